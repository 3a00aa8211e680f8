package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kolkov/monitor"
	"github.com/kolkov/monitor/internal/goid"
)

// NewVersionCmd returns the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version of the monitorctl CLI",
		Run: func(cc *cobra.Command, _ []string) {
			cc.Println(fmt.Sprintf("monitorctl %s (goid fast path: %v)", monitor.Version, goid.FastPath))
		},
	}
}
