package version

import (
	"fmt"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
)

// Заполняются через -ldflags "-X github.com/vladislavdragonenkov/orders/internal/version.version=...".
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info возвращает версию, коммит и дату сборки.
func Info() (v, c, d string) { return GetVersion(), GetCommit(), GetDate() }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает коммит; без ldflags берёт ревизию из VCS-метаданных Go.
func GetCommit() string {
	if commit != "unknown" {
		return commit
	}
	if rev := vcsSetting("vcs.revision"); rev != "" {
		return rev
	}
	return commit
}

// GetDate возвращает дату сборки или время коммита из VCS-метаданных.
func GetDate() string {
	if date != "unknown" {
		return date
	}
	if t := vcsSetting("vcs.time"); t != "" {
		return t
	}
	return date
}

func String() string {
	v, c, d := Info()
	return fmt.Sprintf("version=%s commit=%s date=%s", v, c, d)
}

// Fields возвращает поля для стартовой записи лога.
func Fields() log.Fields {
	v, c, d := Info()
	return log.Fields{"version": v, "commit": c, "build_date": d}
}

func vcsSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}
