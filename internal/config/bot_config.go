package config

import "strings"

const (
	botTokenEnvVar = "GSEM_BOT_TOKEN"
	adminsEnvVar   = "ADMIN_USERNAMES"
)

type BotConfig interface {
	GetBotToken() string
	GetAdminHandles() AdminHandles
	GetBotDebug() bool
}

type Bot struct{}

var _ BotConfig = Bot{}

// AdminHandles is the allow-list of chat handles permitted to run admin commands.
type AdminHandles map[string]struct{}

func (a AdminHandles) IsAdmin(handle string) bool {
	if handle == "" {
		return false
	}
	_, ok := a[strings.TrimPrefix(handle, "@")]
	return ok
}

func (a AdminHandles) String() string {
	var handles []string
	for k := range a {
		handles = append(handles, k)
	}
	return strings.Join(handles, ", ")
}

// ParseAdminHandles splits a whitespace separated list, dropping leading @.
func ParseAdminHandles(raw string) AdminHandles {
	handles := AdminHandles{}
	for _, h := range strings.Fields(raw) {
		h = strings.TrimPrefix(h, "@")
		if h != "" {
			handles[h] = struct{}{}
		}
	}
	return handles
}

func (Bot) GetBotToken() string {
	return GetEnv(botTokenEnvVar, "")
}

func (Bot) GetAdminHandles() AdminHandles {
	return ParseAdminHandles(GetEnv(adminsEnvVar, ""))
}

func (Bot) GetBotDebug() bool {
	return GetEnvAsBool("BOT_DEBUG", false)
}
