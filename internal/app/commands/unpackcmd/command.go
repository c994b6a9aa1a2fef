package unpackcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acronis/go-applib/internal/app/command"
	"github.com/acronis/go-applib/pkg/archive"
	"github.com/acronis/go-applib/pkg/filesys"
)

const (
	stagedFlag      = "staged"
	maxFileSizeFlag = "max-file-size"
)

func New(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpack <archive> [destination]",
		Short: "unpack an archive holding a single top-level directory",
		Long: "Unpack a zip, gzip-tar or bzip2-tar archive into the destination directory\n" +
			"(the working directory by default) and print the extracted top-level directory.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			workDir, err := command.GetWorkingDir(cmd)
			if err != nil {
				return err
			}
			cfg, err := command.Config(cmd)
			if err != nil {
				return err
			}

			dest := workDir
			if len(args) > 1 {
				dest = command.ResolvePath(workDir, args[1])
			}
			return command.Wrap(cmd.Name(), execute(ctx, cmd.OutOrStdout(), cfg, command.ResolvePath(workDir, args[0]), dest))
		},
	}

	cmd.Flags().Bool(stagedFlag, false, "extract into a temporary directory first and move the result into place")
	cmd.Flags().String(maxFileSizeFlag, "", "reject archives holding a file larger than this, e.g. 512MB")
	return cmd
}

func execute(_ context.Context, w io.Writer, cfg *viper.Viper, filename string, dest string) error {
	var opts []archive.Option
	if limit := cfg.GetString(maxFileSizeFlag); limit != "" {
		n, err := humanize.ParseBytes(limit)
		if err != nil {
			return fmt.Errorf("parse %s: %w", maxFileSizeFlag, err)
		}
		opts = append(opts, archive.WithMaxFileSize(int64(n)))
	}
	if cfg.GetBool(stagedFlag) {
		opts = append(opts, archive.WithStaging())
	}

	slog.Info("Unpacking archive", slog.String("archive", filename), slog.String("destination", dest))
	dir, format, err := archive.New(opts...).Unpack(filename, dest)
	if err != nil {
		return fmt.Errorf("unpack %s: %w", filename, err)
	}

	sum, err := filesys.ComputeDirectoryHash(dir)
	if err != nil {
		return err
	}
	slog.Info("Unpacking has been completed", slog.String("directory", dir), slog.String("checksum", sum))

	fmt.Fprintf(w, "format: %s\ndirectory: %s\nchecksum: %s\n", format, dir, sum)
	return nil
}
