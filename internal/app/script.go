package app

import (
	"fmt"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/spf13/cobra"
)

var scriptInstall bool

var scriptCmd = &cobra.Command{
	Use:   "script [path]",
	Short: "Print or install the companion Python script",
	Long: `Print the Python script Blender runs to collect statistics. With
--install, write it to path instead, or to ~/.config/blendstats when no path
is given; blendstats uses that copy when none sits next to the executable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	scriptCmd.Flags().BoolVar(&scriptInstall, "install", false, "Write the script to disk instead of printing it")
	rootCmd.AddCommand(scriptCmd)
}

func runScript(cmd *cobra.Command, args []string) error {
	if !scriptInstall {
		fmt.Print(blend.ScriptSource())
		return nil
	}

	path := projectArg(args)
	if path == "" {
		path = installedScriptPath()
	}
	if err := blend.InstallScript(path); err != nil {
		return err
	}
	fmt.Printf("Installed companion script to %s\n", path)
	return nil
}
