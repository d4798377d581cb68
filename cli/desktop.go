package cli

import (
	"strings"

	"github.com/jerry-desk/bridgecli/commands"
	"github.com/spf13/cobra"
)

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Capture the screen or drive the mouse and keyboard",
	Long: `Runs one desktop action: capture the primary display as a base64 JPEG,
move or click the mouse, type text or press a key, or verify the backend.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// a missing backend is reported before anything else is looked at
		ctrl, err := commands.RequireDesktop()
		if err != nil {
			return err
		}

		if err := commands.ValidateDesktopAction(desktopAction); err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		req := commands.DesktopRequest{
			Action:    desktopAction,
			SubAction: desktopSubAction,
			Text:      desktopText,
			Key:       desktopKey,
			Quality:   desktopQuality,
			MaxSide:   desktopMaxSide,
			SaveDir:   desktopSaveDir,
		}
		if cmd.Flags().Changed("x") {
			req.X = &desktopX
		}
		if cmd.Flags().Changed("y") {
			req.Y = &desktopY
		}
		commands.ApplyDesktopDefaults(&req, cfg.Desktop)

		return printJson(cmd.OutOrStdout(), commands.DesktopCommand(ctrl, req))
	},
}

func init() {
	rootCmd.AddCommand(desktopCmd)

	desktopCmd.Flags().StringVar(&desktopAction, "action", "", "action to perform: "+strings.Join(commands.DesktopActions, ", "))
	desktopCmd.Flags().StringVar(&desktopSubAction, "subaction", "", "mouse action: move, click, double_click, right_click")
	desktopCmd.Flags().IntVar(&desktopX, "x", 0, "x coordinate for mouse actions")
	desktopCmd.Flags().IntVar(&desktopY, "y", 0, "y coordinate for mouse actions")
	desktopCmd.Flags().StringVar(&desktopText, "text", "", "text to type")
	desktopCmd.Flags().StringVar(&desktopKey, "key", "", "key to press, e.g. enter, tab, ctrl")
	desktopCmd.Flags().IntVar(&desktopQuality, "quality", 0, "JPEG quality 1-100 for capture (default from config, 70)")
	desktopCmd.Flags().IntVar(&desktopMaxSide, "max-side", 0, "downscale the capture so its longest side fits")
	desktopCmd.Flags().StringVar(&desktopSaveDir, "save-dir", "", "also write the capture to this directory")
}
