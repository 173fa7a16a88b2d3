package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/synchthia/kaizen/collector"
	"github.com/synchthia/kaizen/config"
	"github.com/synchthia/kaizen/models"
	"github.com/synchthia/kaizen/service"
	"github.com/synchthia/kaizen/ux"
	"github.com/zeebo/xxh3"
)

var ErrTargetMissing = errors.New("the path that you specify does not exist")

func IPFSCommand(app *App) *cobra.Command {
	c := &cobra.Command{
		Use:   "ipfs",
		Short: "Publish files to IPFS",
	}
	c.AddCommand(UploadCommand(app))
	c.AddCommand(PlanCommand(app))
	return c
}

func targetArg(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}

// kaizen ipfs upload [path]
func UploadCommand(app *App) *cobra.Command {
	var (
		yes    bool
		sorted bool
	)

	c := &cobra.Command{
		Use:   "upload [path]",
		Short: "Upload a file or folder to IPFS",
		Long:  "Upload a file or folder to IPFS. The response is written to ipfs.json and the final hash is printed.",
		Example: "  kaizen ipfs upload .        upload the current folder\n" +
			"  kaizen ipfs upload ./build  upload the build folder in the current folder",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetPath := app.resolve(targetArg(args))

			if !yes {
				ok, err := app.Prompter.CaptureConfirm(fmt.Sprintf("Please ensure you will upload 「%s」 to the IPFS (yes/no)", targetPath))
				if err != nil {
					return err
				}
				if !ok {
					app.UX.SuccessToUser("Cancel Upload")
					return nil
				}
			}

			spinner := ux.NewUserSpinner(cmd.ErrOrStderr())
			sp := spinner.SpinToUser("Uploading %s", targetPath)
			defer spinner.Stop()

			final, err := func() (models.AddedObject, error) {
				cfg, err := config.Load(app.ConfigPath)
				if err != nil {
					return models.AddedObject{}, err
				}

				if _, err := os.Stat(targetPath); errors.Is(err, fs.ErrNotExist) {
					return models.AddedObject{}, fmt.Errorf("%w: %s", ErrTargetMissing, targetPath)
				}

				submitter, err := service.NewSubmitter(cmd.Context(), cfg, app.Log)
				if err != nil {
					return models.AddedObject{}, err
				}
				record, err := service.InitRecord(app.WorkDir, app.Log)
				if err != nil {
					return models.AddedObject{}, err
				}

				opts := collector.Options{
					Sorted: sorted,
					OnEntry: func(e models.ContentEntry) {
						sp.UpdateMessage(fmt.Sprintf("Collecting %s", e.VirtualPath))
					},
				}
				final, _, err := service.NewUploader(submitter, record, opts, app.Log).Upload(cmd.Context(), targetPath)
				return final, err
			}()
			if err != nil {
				ux.SpinFailWithError(sp, "", err)
				spinner.Stop()
				return err
			}
			ux.SpinComplete(sp)
			spinner.Stop()

			app.UX.PrintToUser("\nFile/Folder hash: %s", final.Hash)
			app.UX.SuccessToUser("Upload your files to IPFS Successfully")
			return nil
		},
	}

	c.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	c.Flags().BoolVar(&sorted, "sorted", false, "order entries by name instead of filesystem order")

	return c
}

// kaizen ipfs plan [path]
func PlanCommand(app *App) *cobra.Command {
	var sorted bool

	c := &cobra.Command{
		Use:   "plan [path]",
		Short: "List what an upload would send, without uploading",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			targetPath := app.resolve(targetArg(args))

			col, err := collector.Collect(targetPath, collector.Options{Sorted: sorted})
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("Path", "Size", "XXH3")
			if col.IsDir {
				for _, e := range col.Entries {
					if err := table.Append(planRow(e.VirtualPath, e.Content)); err != nil {
						return err
					}
				}
			} else if err := table.Append(planRow(filepath.Base(targetPath), col.Content)); err != nil {
				return err
			}
			if err := table.Render(); err != nil {
				return err
			}

			app.UX.PrintToUser("%d entries, %s total", col.Len(), humanize.Bytes(uint64(col.Size())))
			return nil
		},
	}

	c.Flags().BoolVar(&sorted, "sorted", false, "order entries by name instead of filesystem order")

	return c
}

func planRow(name string, content []byte) []string {
	return []string{name, humanize.Bytes(uint64(len(content))), fmt.Sprintf("%016x", xxh3.Hash(content))}
}
