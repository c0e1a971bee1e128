package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
	"gorm.io/gorm"

	"library-catalog/internal/core/config"
	"library-catalog/internal/core/database"
	"library-catalog/internal/core/logger"
	"library-catalog/internal/domain"
	"library-catalog/internal/repo"
	"library-catalog/internal/seed"
	"library-catalog/internal/service"
)

type env struct {
	cfg     *config.Config
	log     *zap.Logger
	db      *gorm.DB
	cleanup func()
}

func main() {
	_ = godotenv.Load()
	e := &env{}
	err := newRootCmd(e).ExecuteContext(context.Background())
	e.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(e *env) *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "library-admin",
		Short:         "Operator tasks for the library catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// 已注入连接（测试）时不再读配置
			if e.db != nil {
				if e.log == nil {
					e.log = zap.NewNop()
				}
				return nil
			}
			if cfgPath == "" {
				cfgPath = os.Getenv("CONFIG_PATH")
			}
			e.cfg = config.Load(cfgPath)
			e.log, e.cleanup = logger.FromConfig(e.cfg.Log)
			db, err := database.NewGorm(database.Opts{
				Driver:             e.cfg.DB.Driver,
				DSN:                e.cfg.DB.DSN,
				Username:           e.cfg.DB.Username,
				Password:           e.cfg.DB.Password,
				MaxOpenConns:       e.cfg.DB.MaxOpenConns,
				MaxIdleConns:       e.cfg.DB.MaxIdleConns,
				ConnMaxLifetimeMin: e.cfg.DB.ConnMaxLifetimeMin,
				LogLevel:           e.cfg.DB.LogLevel,
				Log:                e.log,
			})
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			e.db = db
			e.log.Debug("database connected", zap.String("dsn", database.MaskDSN(e.cfg.DB.DSN)))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $CONFIG_PATH or ./configs/config.local.yaml)")

	root.AddCommand(
		migrateCmd(e),
		seedCmd(e),
		createUserCmd(e),
		setRoleCmd(e),
	)
	return root
}

// close 释放数据库连接并刷新日志
func (e *env) close() {
	if e.db != nil {
		if sqlDB, err := e.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if e.cleanup != nil {
		e.cleanup()
	}
}

func migrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := repo.Migrate(e.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func seedCmd(e *env) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo accounts and books",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := repo.Migrate(e.db.WithContext(cmd.Context())); err != nil {
				return err
			}
			res, err := seed.Run(cmd.Context(), e.db, reset, e.log)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "created %d users, %d books\n", res.Users, res.Books)
			for _, a := range seed.Accounts {
				fmt.Fprintf(out, "  %-10s %s / %s\n", a.Role, a.Email, a.Password)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "delete all loans, books and users first")
	return cmd
}

func createUserCmd(e *env) *cobra.Command {
	var first, last, email, phone, role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an account (password is prompted)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := newPrompter(cmd)
			pw, err := in.password("Password: ")
			if err != nil {
				return err
			}
			again, err := in.password("Repeat password: ")
			if err != nil {
				return err
			}
			if pw != again {
				return domain.ErrPasswordMismatch
			}
			users := service.NewUserService(repo.NewStore(e.db), e.log)
			u := &domain.User{
				FirstName: first,
				LastName:  last,
				Email:     email,
				Phone:     phone,
				Password:  pw,
				Role:      domain.Role(role),
				Status:    domain.UserActive,
			}
			if err := users.Create(cmd.Context(), u); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s) id=%s\n", u.Email, u.Role, u.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&first, "first-name", "", "first name")
	f.StringVar(&last, "last-name", "", "last name")
	f.StringVar(&email, "email", "", "email address")
	f.StringVar(&phone, "phone", "", "phone number")
	f.StringVar(&role, "role", string(domain.RoleReader), "reader | librarian | admin")
	_ = cmd.MarkFlagRequired("first-name")
	_ = cmd.MarkFlagRequired("last-name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func setRoleCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <email> <reader|librarian|admin>",
		Short: "Change the role of an existing account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			users := service.NewUserService(repo.NewStore(e.db), e.log)
			u, err := users.SetRole(cmd.Context(), args[0], domain.Role(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", u.Email, u.Role.Label())
			return nil
		},
	}
}

// prompter 终端下不回显；管道输入按整行读取，只去掉行尾换行
type prompter struct {
	in  io.Reader
	out io.Writer
	r   *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{in: cmd.InOrStdin(), out: cmd.ErrOrStderr()}
}

func (p *prompter) password(prompt string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.in)
	}
	line, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
