package cmd

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/synchthia/kaizen/service"
	"github.com/synchthia/kaizen/ux"
)

func DeployCommand(app *App) *cobra.Command {
	c := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy project artifacts",
	}
	c.AddCommand(ContractsCommand(app))
	return c
}

// kaizen deploy contracts
func ContractsCommand(app *App) *cobra.Command {
	var (
		binary  string
		network string
	)

	c := &cobra.Command{
		Use:     "contracts",
		Short:   "Deploy smart contracts with truffle",
		Example: "kaizen deploy contracts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.ContainsRune(binary, '/') || strings.ContainsRune(binary, filepath.Separator) {
				binary = app.resolve(binary)
			}
			deployer := service.NewDeployer(binary, network, app.Log)
			deployer.Dir = app.WorkDir

			spinner := ux.NewUserSpinner(cmd.ErrOrStderr())
			sp := spinner.SpinToUser("Deploying contracts to %s", deployer.Network)

			output, err := deployer.Deploy(cmd.Context())
			if err != nil {
				ux.SpinFailWithError(sp, "", err)
				spinner.Stop()
				if output != "" {
					app.UX.PrintToUser("%s", output)
				}
				return err
			}
			ux.SpinComplete(sp)
			spinner.Stop()

			app.UX.PrintToUser("%s", output)
			return nil
		},
	}

	c.Flags().StringVar(&binary, "truffle", service.DefaultTruffleBinary, "truffle binary")
	c.Flags().StringVarP(&network, "network", "n", service.DefaultNetwork, "truffle network to deploy to")

	return c
}
