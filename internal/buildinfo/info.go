package buildinfo

import "runtime/debug"

// Set at build time via -ldflags. CommitHash falls back to the VCS revision
// embedded by the go tool.
var (
	Version    = "v0.1.0"
	CommitHash = ""
)

type Info struct {
	About      string `json:"about,omitempty"`
	Service    string `json:"service,omitempty"`
	Version    string `json:"version,omitempty"`
	CommitHash string `json:"commit_hash,omitempty"`
	GoVersion  string `json:"go_version,omitempty"`
}

func GetBuildInfo() Info {
	info := Info{
		About:      "https://github.com/darmiel/attrgate",
		Service:    "attrgate",
		Version:    Version,
		CommitHash: CommitHash,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info.GoVersion = bi.GoVersion
		if info.CommitHash == "" {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.CommitHash = s.Value
				}
			}
		}
	}
	if info.CommitHash == "" {
		info.CommitHash = "unknown"
	}
	return info
}
