package detectcmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/acronis/go-applib/internal/app/command"
	"github.com/acronis/go-applib/pkg/archive"
)

func New(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "detect <archive>...",
		Short: "print the format of archives",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := command.GetWorkingDir(cmd)
			if err != nil {
				return err
			}
			return command.Wrap(cmd.Name(), execute(ctx, cmd.OutOrStdout(), workDir, args))
		},
	}
}

func execute(_ context.Context, w io.Writer, workDir string, filenames []string) error {
	for _, name := range filenames {
		format, err := archive.Detect(command.ResolvePath(workDir, name))
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\n", name, format)
	}
	return nil
}
