package cmd

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/gophertribe/devtool/build"
	"github.com/spf13/cobra"
)

const (
	binary      = "dist/moisture"
	mainPackage = "./cmd/moisture"
	buildImage  = "gophertribe/gobuild:1.25-bookworm"
)

// boards maps supported single board computers to their GOOS/GOARCH.
var boards = map[string][2]string{
	"nanopi": {"linux", "arm"},
	"rpi":    {"linux", "arm"},
	"rpi64":  {"linux", "arm64"},
}

func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the moisture cli",
		Long: `Build the moisture cli. Native builds run go build directly; other
targets are built inside a docker image with cgo cross toolchains (the HID
bridge driver needs cgo).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			goos, _ := flags.GetString("os")
			goarch, _ := flags.GetString("arch")
			version, _ := flags.GetString("version")
			crossOs, _ := flags.GetString("cross-os")
			crossArch, _ := flags.GetString("cross-arch")
			board, _ := flags.GetString("board")
			if board != "" {
				target, ok := boards[board]
				if !ok {
					return fmt.Errorf("unknown board %q", board)
				}
				crossOs, crossArch = target[0], target[1]
			}

			if goos == runtime.GOOS && goarch == runtime.GOARCH {
				if crossOs != "" && crossArch != "" {
					goos, goarch = crossOs, crossArch
				}
				slog.Info("building", "os", goos, "arch", goarch, "version", version)
				return build.GoBuild(binary, mainPackage, build.GoBuildOpts{
					Version:       version,
					InjectVersion: true,
					ConfigPackage: "github.com/mklimuk/moisture/pkg/config",
					EnableCgo:     true,
					Arch:          goarch,
					OS:            goos,
				})
			}

			noCache, err := flags.GetBool("no-cache")
			if err != nil {
				return fmt.Errorf("could not get no-cache flag: %w", err)
			}
			slog.Info("building in docker", "os", goos, "arch", goarch, "image", buildImage)
			return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", goos, goarch),
				[]string{"build", "--version", version, "--cross-os", crossOs, "--cross-arch", crossArch},
				build.DockerBuildOpts{
					NoCache: noCache,
					Image:   buildImage,
				})
		},
	}
	cmd.Flags().Bool("no-cache", false, "do not use cache when building in docker")
	cmd.Flags().String("version", "latest", "version injected into the binary")
	cmd.Flags().String("os", runtime.GOOS, "os of the build host")
	cmd.Flags().String("arch", runtime.GOARCH, "arch of the build host")
	cmd.Flags().String("cross-os", "", "os to cross-compile for")
	cmd.Flags().String("cross-arch", "", "arch to cross-compile for")
	cmd.Flags().String("board", "", "cross-compile for a board: nanopi, rpi or rpi64")
	return cmd
}
