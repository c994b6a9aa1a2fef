package packcmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/acronis/go-applib/internal/app/command"
	"github.com/acronis/go-applib/pkg/archive"
	"github.com/acronis/go-applib/pkg/filesys"
)

const (
	formatFlag  = "format"
	excludeFlag = "exclude"
)

func New(ctx context.Context) *cobra.Command {
	format := formatValue(archive.FormatGzipTar)
	cmd := &cobra.Command{
		Use:   "pack <archive> <path>...",
		Short: "pack paths of the working directory into an archive",
		Long: "Pack files and directories, given relative to the working directory, into a new\n" +
			"gzip-tar or bzip2-tar archive. An existing archive is replaced.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseDir, err := command.GetWorkingDir(cmd)
			if err != nil {
				return fmt.Errorf("get base directory: %w", err)
			}
			cfg, err := command.Config(cmd)
			if err != nil {
				return err
			}

			output := command.ResolvePath(baseDir, args[0])
			return command.Wrap(cmd.Name(), execute(ctx, cmd.OutOrStdout(), cfg, baseDir, output, args[1:]))
		},
	}

	cmd.Flags().VarP(&format, formatFlag, "f", "archive format, one of zip, tgz, bz2")
	cmd.Flags().StringSlice(excludeFlag, nil, "glob of paths to leave out, may be repeated")
	return cmd
}

func execute(_ context.Context, w io.Writer, cfg *viper.Viper, baseDir string, output string, files []string) error {
	format, err := archive.ParseFormat(cfg.GetString(formatFlag))
	if err != nil {
		return err
	}

	svc := archive.New(archive.WithExclude(cfg.GetStringSlice(excludeFlag)...))

	slog.Info("Packing archive", slog.String("archive", output), slog.String("format", format.String()),
		slog.String("base", baseDir), slog.Any("paths", files))
	if err := svc.Pack(output, files, baseDir, format); err != nil {
		return fmt.Errorf("pack %s: %w", output, err)
	}

	info, err := os.Stat(output)
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	sum, err := filesys.ComputeFileChecksum(output)
	if err != nil {
		return err
	}
	slog.Info("Packing has been completed", slog.String("filename", output))

	fmt.Fprintf(w, "archive: %s\nsize: %s\nchecksum: %s\n", output, humanize.Bytes(uint64(info.Size())), sum)
	return nil
}
