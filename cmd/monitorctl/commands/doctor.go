package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"

	"github.com/kolkov/monitor"
	"github.com/kolkov/monitor/internal/goid"
)

// Verified runtime.g layout range for the goid assembly fast path. Extend
// after verifying the offset with tools/calc_goid_offset.go.
const (
	fastPathMinGo = "v1.23"
	fastPathMaxGo = "v1.26" // exclusive
)

// NewDoctorCmd returns the doctor command.
func NewDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check goroutine ID fast-path support for this toolchain",
		Long: `Check goroutine ID fast-path support for this toolchain.

The monitor library keys lock ownership on goroutine IDs. On amd64/arm64
with a verified Go version it reads the ID through an assembly fast path;
elsewhere it falls back to stack parsing (~1000x slower per operation).
doctor reports which path is compiled in, cross-checks it against the
universal slow path, and inspects the nearest go.mod for a Go directive
outside the verified range.`,
		RunE: func(cc *cobra.Command, _ []string) error {
			return runDoctor(cc)
		},
	}
}

func runDoctor(cc *cobra.Command) error {
	cc.Printf("monitor %s\n", monitor.Version)
	cc.Printf("toolchain: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	cc.Printf("goid fast path compiled in: %v\n", goid.FastPath)

	// A disagreement means ownership tracking would key on the wrong
	// identity, so it is a hard failure, not a warning.
	fast := goid.ID()
	slow := goid.FromStack()
	if fast != slow {
		return fmt.Errorf("goid cross-check failed: fast path returned %d, stack parsing returned %d "+
			"(incorrect goid offset for this Go version; see tools/calc_goid_offset.go)", fast, slow)
	}
	cc.Printf("goid cross-check: ok (goroutine %d)\n", fast)

	path, data, err := findGoMod()
	if err != nil {
		log.Warn("no go.mod found, skipping module check", "err", err)
		return nil
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if f.Module == nil || f.Go == nil {
		log.Warn("go.mod has no module or go directive, skipping module check", "path", path)
		return nil
	}

	cc.Printf("module: %s (go %s)\n", f.Module.Mod.Path, f.Go.Version)
	if !fastPathSupported(f.Go.Version, runtime.GOARCH) {
		log.Warn("module's toolchain is outside the verified goid fast-path range, builds will use the slow path",
			"go", f.Go.Version,
			"arch", runtime.GOARCH,
			"verified", fmt.Sprintf("%s <= go < %s on amd64/arm64", fastPathMinGo, fastPathMaxGo))
	}

	return nil
}

// fastPathSupported reports whether a build for the given Go directive and
// architecture would compile in the assembly fast path.
func fastPathSupported(goVersion, arch string) bool {
	if arch != "amd64" && arch != "arm64" {
		return false
	}
	v := "v" + goVersion
	if !semver.IsValid(v) {
		return false
	}
	return semver.Compare(v, fastPathMinGo) >= 0 && semver.Compare(v, fastPathMaxGo) < 0
}

// findGoMod walks up from the working directory to the nearest go.mod.
func findGoMod() (string, []byte, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", nil, err
	}
	for {
		path := filepath.Join(dir, "go.mod")
		if data, err := os.ReadFile(path); err == nil {
			return path, data, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil, errors.New("no go.mod in any parent directory")
		}
		dir = parent
	}
}
