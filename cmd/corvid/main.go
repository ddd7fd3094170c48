// Command corvid is a UCI chess engine.
package main

import (
	"bufio"
	"flag"
	"os"
	"runtime"

	"github.com/BurntSushi/toml"
	"github.com/pkg/profile"
	"go.uber.org/zap"

	"github.com/corvid-engine/corvid/engine"
)

var (
	buildVersion = "(devel)"
	buildTime    = "(just now)"

	configPath  = flag.String("config", "", "TOML file of default UCI option values")
	profileMode = flag.String("profile", "", "enable profiling: cpu, mem, or empty to disable")
	bench       = flag.Bool("bench", false, "run a fixed-depth benchmark search and exit")
	version     = flag.Bool("version", false, "print version and exit")
)

// config holds the UCI option values that can be preseeded from a TOML
// file before any setoption command is processed.
type config struct {
	Hash       int
	Threads    int
	UseNNUE    bool
	EvalFile   string
	NnueBlend  int
	NnueScale  int
	NnueSCReLU bool
}

func defaultConfig() config {
	return config{
		Hash:      engine.DefaultHashTableSizeMB,
		Threads:   1,
		NnueBlend: 2,
		NnueScale: 100,
	}
}

// loadConfig reads path as TOML into a fresh config seeded with defaults.
// A missing file is not an error.
func loadConfig(path string, log *zap.SugaredLogger) config {
	cfg := defaultConfig()
	if path == "" {
		return cfg
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !os.IsNotExist(err) {
			log.Warnw("failed to read config file", "path", path, "error", err)
		}
	}
	return cfg
}

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()
	log := logger.Sugar()

	if *version {
		log.Infow("corvid", "version", buildVersion, "go", runtime.Version(), "build", buildTime, "arch", runtime.GOARCH)
		return
	}

	if *profileMode != "" {
		var opt func(*profile.Profile)
		switch *profileMode {
		case "cpu":
			opt = profile.CPUProfile
		case "mem":
			opt = profile.MemProfile
		default:
			log.Warnw("unknown profile mode, ignoring", "mode", *profileMode)
		}
		if opt != nil {
			defer profile.Start(opt).Stop()
		}
	}

	cfg := loadConfig(*configPath, log)
	log.Infow("corvid starting", "version", buildVersion, "go", runtime.Version(), "build", buildTime, "arch", runtime.GOARCH)

	uci := NewUCI(log, cfg)

	if *bench {
		uci.runBench()
		return
	}

	bio := bufio.NewReader(os.Stdin)
	for {
		line, _, err := bio.ReadLine()
		if err != nil {
			log.Infow("input stream closed", "error", err)
			break
		}
		if err := uci.Execute(string(line)); err != nil {
			if err == errQuit {
				break
			}
			log.Warnw("command failed", "line", string(line), "error", err)
			uci.writeOut("info string " + err.Error() + "\n")
		}
	}
}
