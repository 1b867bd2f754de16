package bot

const (
	Green  = "\033[32m"
	Blue   = "\033[34m"
	Yellow = "\033[33m"
	Gray   = "\033[90m" // Bright black, often appears as gray

	ResetColor = "\033[0m" // Reset to default color
)

var audienceColors = map[string]string{
	audienceUser:  Green,
	audienceAdmin: Yellow,
	audienceFile:  Blue,
}
