package cmd

import (
	"github.com/spf13/cobra"
	"github.com/synchthia/kaizen/config"
)

// kaizen set-ipfs
func SetIPFSCommand(app *App) *cobra.Command {
	var ipfs config.IPFSConfig

	c := &cobra.Command{
		Use:     "set-ipfs",
		Short:   "Write the IPFS node settings to kaizen.json",
		Example: "kaizen set-ipfs --host 127.0.0.1 --port 5001 --protocol http",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if ipfs.Host == "" {
				if ipfs.Host, err = app.Prompter.CaptureHost("IPFS host"); err != nil {
					return err
				}
			}
			if ipfs.Port == 0 {
				if ipfs.Port, err = app.Prompter.CapturePort("IPFS port"); err != nil {
					return err
				}
			}
			if ipfs.Protocol == "" {
				if ipfs.Protocol, err = app.Prompter.CaptureList("IPFS protocol", []string{"http", "https"}); err != nil {
					return err
				}
			}

			if err := config.SaveIPFS(app.ConfigPath, ipfs); err != nil {
				return err
			}
			app.UX.GreenCheckmarkToUser("IPFS configuration saved to %s (%s)", app.ConfigPath, ipfs.URL())
			return nil
		},
	}

	c.Flags().StringVar(&ipfs.Host, "host", "", "IPFS API host")
	c.Flags().IntVar(&ipfs.Port, "port", 0, "IPFS API port")
	c.Flags().StringVar(&ipfs.Protocol, "protocol", "", "IPFS API protocol (http or https)")

	return c
}
