// Package version holds build metadata injected with -ldflags, for example:
//
//	go build -ldflags "-X github.com/doeshing/quickstart-go/internal/version.Version=v0.2.0"
package version

var (
	Version   = "dev"
	Commit    = ""
	BuildDate = ""
)
