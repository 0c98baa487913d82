package tempban

// Ban paths reported to the metrics recorder.
const (
	BanPathAdmin       = "admin"
	BanPathSelf        = "self"
	BanPathRetaliation = "retaliation"
	BanPathAuto        = "auto"
)

var banRecorder func(path string)

// RegisterBanRecorder installs a callback invoked for every applied ban.
// Used by the metrics package to count bans without a package cycle.
func RegisterBanRecorder(fn func(path string)) {
	banRecorder = fn
}

func recordBan(path string) {
	if banRecorder != nil {
		banRecorder(path)
	}
}
