package config

const (
	defaultSourceDir         = "assets/videos"
	defaultWorkDir           = "assets/video-files"
	defaultCatalogFile       = "assets/videos.json"
	defaultStateDir          = "~/.local/share/subreel"
	defaultMkvmergeBinary    = "mkvmerge"
	defaultMkvextractBinary  = "mkvextract"
	defaultSubtitleExtension = ".ass"
	defaultServerBind        = ":3001"
	defaultPublicDir         = "public"
	defaultAssJSPath         = "node_modules/assjs/dist/ass.js"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			SourceDir:   defaultSourceDir,
			WorkDir:     defaultWorkDir,
			CatalogFile: defaultCatalogFile,
			StateDir:    defaultStateDir,
		},
		MKVToolNix: MKVToolNix{
			MkvmergeBinary:    defaultMkvmergeBinary,
			MkvextractBinary:  defaultMkvextractBinary,
			SubtitleExtension: defaultSubtitleExtension,
		},
		Server: Server{
			Bind:      defaultServerBind,
			PublicDir: defaultPublicDir,
			AssJSPath: defaultAssJSPath,
		},
		History: History{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
