// Package cmd implements the edumetrics CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/edumetrics/internal/cli"
	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/logging"
	"github.com/theirongolddev/edumetrics/internal/model"
	"github.com/theirongolddev/edumetrics/internal/pipeline"
	"github.com/theirongolddev/edumetrics/internal/store"
)

var (
	flagDays       int
	flagFrom       string
	flagTo         string
	flagRole       string
	flagUser       int64
	flagUniversity int64
	flagModule     int64
	flagCourse     int64
	flagLimit      int
	flagDB         string
	flagQuiet      bool
)

var rootCmd = &cobra.Command{
	Use:   "edumetrics",
	Short: "Course assistant usage analytics",
	Long:  "Analyze course assistant chat activity: usage, costs, engagement, response quality and frequent questions.",
	RunE:  runUsage,

	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.IntVarP(&flagDays, "days", "n", 0, "Time window in days (default from config)")
	pf.StringVar(&flagFrom, "from", "", "Window start (RFC3339 or YYYY-MM-DD), overrides --days")
	pf.StringVar(&flagTo, "to", "", "Window end (RFC3339 or YYYY-MM-DD, dates are inclusive)")
	pf.StringVar(&flagRole, "role", string(model.RoleSuperAdmin), "Caller role: super_admin, admin_professor or professor")
	pf.Int64Var(&flagUser, "user", 0, "Caller user ID (professor roles)")
	pf.Int64Var(&flagUniversity, "university", 0, "University scope (caller university for admin_professor)")
	pf.Int64Var(&flagModule, "module", 0, "Restrict to one module")
	pf.Int64Var(&flagCourse, "course", 0, "Restrict to one course")
	pf.IntVar(&flagLimit, "limit", 0, "Row limit for rankings and FAQ")
	pf.StringVar(&flagDB, "db", "", "Database DSN or SQLite path (overrides config)")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress and info logs")
}

// runtime is the shared state every analytics command works from.
type runtime struct {
	cfg    config.Config
	db     *store.DB
	engine *pipeline.Engine
	logs   io.Closer
}

// openRuntime loads config, sets up logging, opens the store and builds the engine.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logs := logging.Setup(cfg.Log)
	if flagQuiet {
		logging.Quiet()
	}

	dsn := cfg.DatabaseDSN()
	if flagDB != "" {
		dsn = flagDB
	}
	db, err := store.Open(ctx, cfg.Store.Driver, dsn)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	log.WithFields(log.Fields{"driver": db.Driver()}).Debug("store opened")

	engine := pipeline.NewEngine(pipeline.Sources{
		Events:         db,
		Hierarchy:      db,
		Pricing:        db,
		Transcriptions: db,
	}, cfg)
	return &runtime{cfg: cfg, db: db, engine: engine, logs: logs}, nil
}

func (r *runtime) Close() {
	_ = r.db.Close()
	_ = r.logs.Close()
}

// windowDays is --days, falling back to the configured default.
func (r *runtime) windowDays() int {
	if flagDays > 0 {
		return flagDays
	}
	return r.cfg.General.DefaultDays
}

// request builds the engine request from the persistent flags.
func (r *runtime) request() (pipeline.Request, error) {
	req := pipeline.Request{
		Caller: model.Caller{
			UserID:       flagUser,
			Role:         model.Role(flagRole),
			UniversityID: flagUniversity,
		},
		Filter: model.ScopeFilter{
			ModuleID:     flagModule,
			CourseID:     flagCourse,
			UniversityID: flagUniversity,
		},
		Limit: flagLimit,
	}
	switch req.Caller.Role {
	case model.RoleSuperAdmin, model.RoleAdminProfessor, model.RoleProfessor:
	default:
		return req, fmt.Errorf("unknown role %q", flagRole)
	}

	loc := r.engine.Location()
	if flagFrom != "" {
		if req.Start = pipeline.ParseBound(flagFrom, loc, false); req.Start == nil {
			return req, fmt.Errorf("invalid --from %q", flagFrom)
		}
	} else {
		req.Start = pipeline.DaysBack(time.Now(), r.windowDays())
	}
	if flagTo != "" {
		if req.End = pipeline.ParseBound(flagTo, loc, true); req.End == nil {
			return req, fmt.Errorf("invalid --to %q", flagTo)
		}
	}
	if req.Start != nil && req.End != nil && !req.Start.Before(*req.End) {
		return req, errors.New("--from must be before --to")
	}
	return req, nil
}

// windowLabel describes the request window for report titles.
func (r *runtime) windowLabel(req pipeline.Request) string {
	if flagFrom == "" && flagTo == "" {
		return fmt.Sprintf("Last %dd", r.windowDays())
	}
	loc := r.engine.Location()
	label := "…"
	if req.Start != nil {
		label = req.Start.In(loc).Format("2006-01-02")
	}
	label += " →"
	if req.End != nil {
		// End is exclusive.
		label += " " + req.End.Add(-time.Nanosecond).In(loc).Format("2006-01-02")
	}
	return label
}

// withRuntime runs fn with an open runtime and a built request.
func withRuntime(fn func(ctx context.Context, r *runtime, req pipeline.Request) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		r, err := openRuntime(ctx)
		if err != nil {
			return err
		}
		defer r.Close()

		req, err := r.request()
		if err != nil {
			return err
		}
		return fn(ctx, r, req)
	}
}

func printTitle(title string) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
