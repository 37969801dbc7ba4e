package collector_config

// defaultURLs is the built-in collection corpus: a spread of landing pages
// with different loading profiles, from media-heavy to mostly-static.
var defaultURLs = []string{
	"https://www.example.com",
	"https://www.wikipedia.org",
	"https://en.wikipedia.org/wiki/Performance",
	"https://www.bbc.com",
	"https://www.cnn.com",
	"https://www.theverge.com",
	"https://www.nytimes.com",
	"https://www.amazon.com",
	"https://www.ebay.com",
	"https://www.etsy.com",
	"https://www.reddit.com",
	"https://www.twitch.tv",
	"https://www.imdb.com",
	"https://www.booking.com",
	"https://www.airbnb.com",
	"https://weather.com",
	"https://www.espn.com",
	"https://www.ikea.com",
	"https://www.medium.com",
	"https://www.npmjs.com",
	"https://github.com",
	"https://stackoverflow.com",
	"https://developer.mozilla.org",
	"https://news.ycombinator.com",
}
