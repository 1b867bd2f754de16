package bot

// Command name constants
// Every command the bot answers to is listed here
const (
	// Session commands
	CommandLogin       = "login"
	CommandLoginStatus = "login_status"
	CommandLogout      = "logout"
	CommandProgress    = "progress"

	// Help commands
	CommandStart = "start"
	CommandHelp  = "help"

	// Admin commands
	CommandExport = "export"
)

// Document kinds, routed by file extension
const (
	DocumentSubmission = "submission"
	DocumentRoster     = "roster"
)

const rosterExtension = ".txt"
