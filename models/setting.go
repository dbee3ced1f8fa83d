package models

// Setting keys
const (
	SettingActiveChatID = "active_chat_id"
)

// Setting is a flat key/value pair.
type Setting struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}
