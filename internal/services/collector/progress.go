package collector

import "go.uber.org/zap"

// Update is emitted every time one fetch attempt settles, successful or
// not.
type Update struct {
	URL      string
	URLIndex int
	URLTotal int
	Target   int
	RemoteOK int
	LocalOK  int
}

// Progress receives collection updates. It is an explicit handle so
// parallel runs and tests get isolated instances.
type Progress interface {
	Update(u Update)
}

// LogProgress renders updates through the run's logger.
type LogProgress struct {
	Log *zap.Logger
}

func (p *LogProgress) Update(u Update) {
	p.Log.Info("progress",
		zap.String("url", u.URL),
		zap.Int("url_index", u.URLIndex),
		zap.Int("url_total", u.URLTotal),
		zap.Int("remote", u.RemoteOK),
		zap.Int("local", u.LocalOK),
		zap.Int("target", u.Target),
	)
}
