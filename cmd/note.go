package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	internalApp "github.com/haierkeys/personal-notes/internal/app"
	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/internal/dto"
	"github.com/haierkeys/personal-notes/internal/service"
	"github.com/haierkeys/personal-notes/pkg/logger"
	"github.com/haierkeys/personal-notes/pkg/storage"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type noteFlags struct {
	config    string // 配置文件路径
	ephemeral bool   // 仅使用进程内存保存本地笔记
	timeout   time.Duration
	title     string
	content   string
}

// errBlankTitle 标题为空
var errBlankTitle = errors.New("title must not be blank")

func init() {
	flags := new(noteFlags)

	noteCmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes from the command line // 命令行管理笔记",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNote(cmd, flags, func(ctx context.Context, notes service.NoteService) (any, error) {
				list, err := notes.ListNotes(ctx)
				if err != nil {
					return nil, err
				}
				if list == nil {
					list = []domain.Note{}
				}
				return dto.NoteListResponse{List: list, Configured: notes.Configured()}, nil
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create --title <title> [--content <text>|-]",
		Short: "Create a note",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input(cmd.InOrStdin())
			if err != nil {
				return err
			}
			return runNote(cmd, flags, func(ctx context.Context, notes service.NoteService) (any, error) {
				return notes.CreateNote(ctx, in)
			})
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update <id> --title <title> [--content <text>|-]",
		Short: "Update a note, a draft id creates a new note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := flags.input(cmd.InOrStdin())
			if err != nil {
				return err
			}
			id := domain.ParseNoteID(args[0])
			return runNote(cmd, flags, func(ctx context.Context, notes service.NoteService) (any, error) {
				return notes.UpdateNote(ctx, id, in)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.ParseNoteID(args[0])
			return runNote(cmd, flags, func(ctx context.Context, notes service.NoteService) (any, error) {
				ok, err := notes.DeleteNote(ctx, id)
				if err != nil {
					return nil, err
				}
				return dto.NoteDeleteResponse{ID: id.String(), Deleted: ok}, nil
			})
		},
	}

	for _, c := range []*cobra.Command{createCmd, updateCmd} {
		c.Flags().StringVarP(&flags.title, "title", "t", "", "note title")
		c.Flags().StringVar(&flags.content, "content", "", "note content, - reads stdin")
		_ = c.MarkFlagRequired("title")
	}

	pf := noteCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "config file")
	pf.BoolVar(&flags.ephemeral, "ephemeral", false, "keep local notes in memory only")
	pf.DurationVar(&flags.timeout, "timeout", time.Minute, "overall command timeout")

	noteCmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd)
	rootCmd.AddCommand(noteCmd)
}

// input 读取标题与内容，内容为 - 时从 stdin 读取
func (f *noteFlags) input(stdin io.Reader) (domain.NoteInput, error) {
	if strings.TrimSpace(f.title) == "" {
		return domain.NoteInput{}, errBlankTitle
	}
	content := f.content
	if content == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return domain.NoteInput{}, errors.Wrap(err, "read content from stdin")
		}
		content = string(b)
	}
	return domain.NoteInput{Title: f.title, Content: content}, nil
}

// runNote builds the app container, runs fn and prints its result as JSON
// runNote 创建应用容器，执行 fn 并以 JSON 输出结果
func runNote(cmd *cobra.Command, flags *noteFlags, fn func(context.Context, service.NoteService) (any, error)) error {
	cfg, err := loadNoteConfig(flags)
	if err != nil {
		return err
	}

	lg, err := logger.NewLogger(logger.Config{Level: cfg.Log.Level})
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	a, err := internalApp.NewApp(cfg, lg, nil)
	if err != nil {
		return err
	}
	defer func() { _ = a.Shutdown(context.Background()) }()

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.timeout)
	defer cancel()

	out, err := fn(ctx, a.NoteService)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), out)
}

// loadNoteConfig 加载配置，--ephemeral 时改用内存存储
func loadNoteConfig(flags *noteFlags) (*internalApp.AppConfig, error) {
	path, err := resolveConfig(flags.config)
	if err != nil {
		return nil, err
	}
	cfg, _, err := internalApp.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if flags.ephemeral {
		cfg.Local.Type = storage.MEMORY
	}
	return cfg, nil
}

func printJSON(w io.Writer, v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
