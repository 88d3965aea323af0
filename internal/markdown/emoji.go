package markdown

// emojiShortcodes maps the common GitHub-style shortcode names to their
// emoji. Unknown names pass through untouched.
var emojiShortcodes = map[string]string{
	"smile":            "😄",
	"grin":             "😁",
	"joy":              "😂",
	"wink":             "😉",
	"laughing":         "😆",
	"sweat_smile":      "😅",
	"thinking":         "🤔",
	"sunglasses":       "😎",
	"sob":              "😭",
	"scream":           "😱",
	"heart":            "❤️",
	"broken_heart":     "💔",
	"thumbsup":         "👍",
	"+1":               "👍",
	"thumbsdown":       "👎",
	"-1":               "👎",
	"wave":             "👋",
	"clap":             "👏",
	"pray":             "🙏",
	"muscle":           "💪",
	"point_right":      "👉",
	"eyes":             "👀",
	"brain":            "🧠",
	"fire":             "🔥",
	"sparkles":         "✨",
	"star":             "⭐",
	"zap":              "⚡",
	"boom":             "💥",
	"tada":             "🎉",
	"rocket":           "🚀",
	"bulb":             "💡",
	"bug":              "🐛",
	"check":            "✅",
	"white_check_mark": "✅",
	"x":                "❌",
	"warning":          "⚠️",
	"no_entry":         "⛔",
	"question":         "❓",
	"exclamation":      "❗",
	"lock":             "🔒",
	"key":              "🔑",
	"gear":             "⚙️",
	"hammer":           "🔨",
	"wrench":           "🔧",
	"package":          "📦",
	"memo":             "📝",
	"book":             "📖",
	"books":            "📚",
	"bell":             "🔔",
	"link":             "🔗",
	"mag":              "🔍",
	"folder":           "📁",
	"chart":            "📊",
	"calendar":         "📅",
	"clock":            "🕐",
	"hourglass":        "⏳",
	"robot":            "🤖",
	"computer":         "💻",
	"globe":            "🌍",
	"cloud":            "☁️",
	"snake":            "🐍",
	"coffee":           "☕",
	"pizza":            "🍕",
	"100":              "💯",
}
