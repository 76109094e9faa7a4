package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"ptaplan/internal/app"
	"ptaplan/internal/config"
	"ptaplan/internal/db"
	"ptaplan/internal/domain"
	"ptaplan/internal/engine"
	"ptaplan/internal/export"
	"ptaplan/internal/migrate"
	"ptaplan/internal/repo"
	"ptaplan/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "ptaplan",
	Short: "PTA planning and progress tracking",
	Long: `ptaplan manages an annual work plan (Plan de Travail Annuel):
organizational and objective hierarchies, budgeted activities, dated
progress records with automatic lateness flags, and an Excel export.`,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("PTAPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("workspace", "w", ".", "workspace directory")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	_ = viper.BindPFlag("workspace", rootCmd.PersistentFlags().Lookup("workspace"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func registerCommands() {
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(structureCmd())
	rootCmd.AddCommand(objectiveCmd())
	rootCmd.AddCommand(pcopCmd())
	rootCmd.AddCommand(activityCmd())
	rootCmd.AddCommand(suiviCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(exportCmd())
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a workspace",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			if _, err := db.EnsureWorkspace(workspace); err != nil {
				return err
			}
			cfgPath := config.Path(workspace)
			if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := os.WriteFile(cfgPath, []byte(config.GenerateDefault()), 0o644); err != nil {
					return err
				}
				fmt.Println("wrote", cfgPath)
			}
			conn, err := db.Open(db.Config{Workspace: workspace})
			if err != nil {
				return err
			}
			defer conn.Close()
			if err := migrate.Migrate(conn); err != nil {
				return err
			}
			cfg, err := config.Load(workspace)
			if err != nil {
				return err
			}
			e := engine.New(conn, cfg)
			if err := e.SeedAdmin(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("workspace ready:", db.Path(workspace))
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			workspace := viper.GetString("workspace")
			conn, e, err := app.OpenEngine(cmd.Context(), workspace)
			if err != nil {
				return err
			}
			defer conn.Close()

			cfg := e.Config
			if addr == "" {
				addr = fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
			}
			logger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "http").Logger()
			handler, err := server.New(server.Config{
				Engine:   e,
				BasePath: cfg.Server.BasePath,
				Auth: server.AuthConfig{
					JWTSecret: cfg.Auth.JWTSecret,
					TokenTTL:  time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
				},
				Logger: logger,
			})
			if err != nil {
				return err
			}
			srv := &http.Server{Addr: addr, Handler: handler}
			go func() {
				<-cmd.Context().Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(ctx)
			}()
			logger.Info().Str("addr", addr).Str("base_path", cfg.Server.BasePath).Msg("serving PTA API")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (defaults to config port)")
	return cmd
}

func userCmd() *cobra.Command {
	user := &cobra.Command{Use: "user", Short: "Manage users"}
	user.AddCommand(userListCmd())
	user.AddCommand(userCreateCmd())
	user.AddCommand(userDeleteCmd())
	return user
}

func userListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListUsers(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Name", "Email", "Role"})
				for _, u := range items {
					tw.AppendRow(table.Row{u.ID, u.Name, u.Email, u.Role})
				}
				tw.Render()
				return nil
			})
		},
	}
}

func userCreateCmd() *cobra.Command {
	var name, email, password, role string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				u, err := e.CreateUser(ctx, engine.UserCreateOptions{
					Name:     name,
					Email:    email,
					Password: password,
					Role:     domain.Role(role),
				})
				if err != nil {
					return err
				}
				return printJSON(u)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&password, "password", "", "password")
	cmd.Flags().StringVar(&role, "role", "user", "role (admin, superviseur, user)")
	return cmd
}

func userDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.Repo.DeleteUser(ctx, args[0])
			})
		},
	}
}

func structureCmd() *cobra.Command {
	st := &cobra.Command{Use: "structure", Short: "Manage the organizational hierarchy"}
	st.AddCommand(structureTreeCmd())
	st.AddCommand(structureCreateCmd())
	return st
}

func structureTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Show structures with their directions, services and divisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				structures, err := e.Repo.ListStructures(ctx)
				if err != nil {
					return err
				}
				directions, err := e.Repo.ListDirections(ctx, "")
				if err != nil {
					return err
				}
				services, err := e.Repo.ListServices(ctx, "")
				if err != nil {
					return err
				}
				divisions, err := e.Repo.ListDivisions(ctx, "")
				if err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"Structure", "Direction", "Service", "Division"})
				for _, s := range structures {
					tw.AppendRow(table.Row{s.Code + " " + s.Name, "", "", ""})
					for _, d := range directions {
						if d.StructureID == nil || *d.StructureID != s.ID {
							continue
						}
						tw.AppendRow(table.Row{"", d.Code + " " + d.Name, "", ""})
						for _, svc := range services {
							if svc.DirectionID == nil || *svc.DirectionID != d.ID {
								continue
							}
							tw.AppendRow(table.Row{"", "", svc.Code + " " + svc.Name, ""})
							for _, div := range divisions {
								if div.ServiceID == nil || *div.ServiceID != svc.ID {
									continue
								}
								tw.AppendRow(table.Row{"", "", "", div.Code + " " + div.Name})
							}
						}
					}
				}
				tw.Render()
				return nil
			})
		},
	}
}

func structureCreateCmd() *cobra.Command {
	var level, parent, code, name, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a hierarchy node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				stamp := e.Now().UTC().Format(time.RFC3339)
				id := newID()
				switch level {
				case "structure":
					s := domain.Structure{ID: id, Code: code, Name: name, Description: description, CreatedAt: stamp}
					if err := e.Repo.InsertStructure(ctx, s); err != nil {
						return err
					}
					return printJSON(s)
				case "direction":
					d := domain.Direction{ID: id, StructureID: opt(parent), Code: code, Name: name, Description: description, CreatedAt: stamp}
					if err := e.Repo.InsertDirection(ctx, d); err != nil {
						return err
					}
					return printJSON(d)
				case "service":
					s := domain.Service{ID: id, DirectionID: opt(parent), Code: code, Name: name, Description: description, CreatedAt: stamp}
					if err := e.Repo.InsertService(ctx, s); err != nil {
						return err
					}
					return printJSON(s)
				case "division":
					d := domain.Division{ID: id, ServiceID: opt(parent), Code: code, Name: name, Description: description, CreatedAt: stamp}
					if err := e.Repo.InsertDivision(ctx, d); err != nil {
						return err
					}
					return printJSON(d)
				default:
					return fmt.Errorf("unknown level %q (structure, direction, service, division)", level)
				}
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", "structure", "hierarchy level")
	cmd.Flags().StringVar(&parent, "parent", "", "parent node id")
	cmd.Flags().StringVar(&code, "code", "", "node code")
	cmd.Flags().StringVar(&name, "name", "", "node name")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func objectiveCmd() *cobra.Command {
	obj := &cobra.Command{Use: "objective", Short: "Manage the objectives hierarchy"}
	obj.AddCommand(objectiveListCmd())
	obj.AddCommand(objectiveCreateCmd())
	return obj
}

func objectiveListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List general objectives with specifics and expected results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				generals, err := e.Repo.ListGeneralObjectives(ctx)
				if err != nil {
					return err
				}
				specifics, err := e.Repo.ListSpecificObjectives(ctx, "")
				if err != nil {
					return err
				}
				results, err := e.Repo.ListExpectedResults(ctx, "")
				if err != nil {
					return err
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"General", "Specific", "Expected result"})
				for _, og := range generals {
					tw.AppendRow(table.Row{og.Code + " " + og.Title, "", ""})
					for _, os2 := range specifics {
						if os2.GeneralObjectiveID != og.ID {
							continue
						}
						tw.AppendRow(table.Row{"", os2.Code + " " + os2.Title, ""})
						for _, ra := range results {
							if ra.SpecificObjectiveID != os2.ID {
								continue
							}
							tw.AppendRow(table.Row{"", "", ra.Code + " " + ra.Description})
						}
					}
				}
				tw.Render()
				return nil
			})
		},
	}
}

func objectiveCreateCmd() *cobra.Command {
	var level, parent, code, title, description string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an objective node",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				stamp := e.Now().UTC().Format(time.RFC3339)
				id := newID()
				switch level {
				case "general":
					o := domain.GeneralObjective{ID: id, Code: code, Title: title, Description: description, CreatedAt: stamp}
					if err := e.Repo.InsertGeneralObjective(ctx, o); err != nil {
						return err
					}
					return printJSON(o)
				case "specific":
					o := domain.SpecificObjective{ID: id, GeneralObjectiveID: parent, Code: code, Title: title, Description: description, CreatedAt: stamp}
					if err := e.Repo.InsertSpecificObjective(ctx, o); err != nil {
						return err
					}
					return printJSON(o)
				case "result":
					r := domain.ExpectedResult{ID: id, SpecificObjectiveID: parent, Code: code, Description: description, CreatedAt: stamp}
					if r.Description == "" {
						r.Description = title
					}
					if err := e.Repo.InsertExpectedResult(ctx, r); err != nil {
						return err
					}
					return printJSON(r)
				default:
					return fmt.Errorf("unknown level %q (general, specific, result)", level)
				}
			})
		},
	}
	cmd.Flags().StringVar(&level, "level", "general", "objective level")
	cmd.Flags().StringVar(&parent, "parent", "", "parent node id")
	cmd.Flags().StringVar(&code, "code", "", "code")
	cmd.Flags().StringVar(&title, "title", "", "title")
	cmd.Flags().StringVar(&description, "description", "", "description")
	return cmd
}

func pcopCmd() *cobra.Command {
	pcop := &cobra.Command{Use: "pcop", Short: "Manage the PCOP budget catalog"}
	pcop.AddCommand(pcopCreateCmd())
	pcop.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List PCOP entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListPCOPEntries(ctx)
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Code", "Label", "Unit cost"})
				for _, p := range items {
					tw.AppendRow(table.Row{p.ID, p.Code, p.Label, p.UnitCost.String()})
				}
				tw.Render()
				return nil
			})
		},
	})
	return pcop
}

func pcopCreateCmd() *cobra.Command {
	var code, label, unitCost string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a PCOP entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				cost := decimal.Zero
				if unitCost != "" {
					var err error
					if cost, err = decimal.NewFromString(unitCost); err != nil {
						return fmt.Errorf("unit-cost: %w", err)
					}
				}
				p := domain.PCOPEntry{
					ID:        newID(),
					Code:      code,
					Label:     label,
					UnitCost:  cost,
					CreatedAt: e.Now().UTC().Format(time.RFC3339),
				}
				if err := e.Repo.InsertPCOPEntry(ctx, p); err != nil {
					return err
				}
				return printJSON(p)
			})
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "PCOP code")
	cmd.Flags().StringVar(&label, "label", "", "label")
	cmd.Flags().StringVar(&unitCost, "unit-cost", "", "unit cost")
	return cmd
}

func parseDecimalFlag(name, value string) (*decimal.Decimal, error) {
	if value == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &d, nil
}

func activityCmd() *cobra.Command {
	act := &cobra.Command{Use: "activity", Short: "Manage activities"}
	act.AddCommand(activityCreateCmd())
	act.AddCommand(activityListCmd())
	act.AddCommand(activityShowCmd())
	act.AddCommand(activityDeleteCmd())
	return act
}

func activityCreateCmd() *cobra.Command {
	var description, start, end, status, unitCost, quantity, amount string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				opts := engine.ActivityCreateOptions{
					Description: description,
					StartDate:   start,
					EndDate:     end,
					Status:      status,
				}
				var err error
				if opts.UnitCost, err = parseDecimalFlag("unit-cost", unitCost); err != nil {
					return err
				}
				if opts.Quantity, err = parseDecimalFlag("quantity", quantity); err != nil {
					return err
				}
				if opts.Amount, err = parseDecimalFlag("amount", amount); err != nil {
					return err
				}
				a, err := e.CreateActivity(ctx, opts)
				if err != nil {
					return err
				}
				return printJSON(a)
			})
		},
	}
	cmd.Flags().StringVar(&description, "description", "", "activity description")
	cmd.Flags().StringVar(&start, "start", "", "start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "end date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&status, "status", "", "initial status")
	cmd.Flags().StringVar(&unitCost, "unit-cost", "", "unit cost")
	cmd.Flags().StringVar(&quantity, "quantity", "", "quantity")
	cmd.Flags().StringVar(&amount, "amount", "", "explicit amount (overrides unit-cost x quantity)")
	return cmd
}

func activityListCmd() *cobra.Command {
	var status string
	var lateOnly bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List activities",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListActivities(ctx, repo.ActivityFilter{Status: status})
				if err != nil {
					return err
				}
				now := e.Now()
				if lateOnly {
					late := items[:0]
					for _, a := range items {
						if a.IsLate(now) {
							late = append(late, a)
						}
					}
					items = late
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Description", "End date", "Status", "Late", "Days left"})
				for _, a := range items {
					end := ""
					if a.EndDate != nil {
						end = *a.EndDate
					}
					days := ""
					if d := a.DaysRemaining(now); d != nil {
						days = fmt.Sprintf("%d", *d)
					}
					tw.AppendRow(table.Row{a.ID, a.Description, end, a.Status, a.IsLate(now), days})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status")
	cmd.Flags().BoolVar(&lateOnly, "late", false, "only late activities")
	return cmd
}

func activityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show an activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				a, err := e.Repo.GetActivity(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(a)
			})
		},
	}
}

func activityDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an activity and its progress records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				return e.DeleteActivity(ctx, args[0])
			})
		},
	}
}

func suiviCmd() *cobra.Command {
	suivi := &cobra.Command{Use: "suivi", Short: "Record and inspect progress"}
	suivi.AddCommand(suiviRecordCmd())
	suivi.AddCommand(suiviListCmd())
	return suivi
}

func suiviRecordCmd() *cobra.Command {
	var activityID, date, remark string
	var advancement int
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a progress observation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				if date == "" {
					date = e.Now().UTC().Format(time.DateOnly)
				}
				var adv *int
				if cmd.Flags().Changed("advancement") {
					adv = &advancement
				}
				s, err := e.RecordProgress(ctx, engine.SuiviOptions{
					ActivityID:      activityID,
					ObservationDate: date,
					Remark:          remark,
					Advancement:     adv,
				})
				if err != nil {
					return err
				}
				return printJSON(s)
			})
		},
	}
	cmd.Flags().StringVar(&activityID, "activity", "", "activity id")
	cmd.Flags().StringVar(&date, "date", "", "observation date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&remark, "remark", "", "remark")
	cmd.Flags().IntVar(&advancement, "advancement", 0, "advancement percent (0-100)")
	return cmd
}

func suiviListCmd() *cobra.Command {
	var activityID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List progress records",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				items, err := e.Repo.ListSuivis(ctx, repo.SuiviFilter{ActivityID: activityID})
				if err != nil {
					return err
				}
				if viper.GetBool("json") {
					return printJSON(items)
				}
				tw := table.NewWriter()
				tw.SetOutputMirror(os.Stdout)
				tw.AppendHeader(table.Row{"ID", "Activity", "Date", "Advancement", "Late", "Message"})
				for _, s := range items {
					adv := ""
					if s.Advancement != nil {
						adv = fmt.Sprintf("%d%%", *s.Advancement)
					}
					tw.AppendRow(table.Row{s.ID, s.ActivityID, s.ObservationDate, adv, s.LateNotification, s.NotificationMessage})
				}
				tw.Render()
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&activityID, "activity", "", "filter by activity id")
	return cmd
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show aggregate statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				stats, err := e.Dashboard(ctx)
				if err != nil {
					return err
				}
				return printJSON(stats)
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the plan to an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEngine(cmd.Context(), func(ctx context.Context, e engine.Engine) error {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				x := export.Exporter{
					Repo:         e.Repo,
					Now:          e.Now,
					Organization: e.Config.Export.Organization,
					Currency:     e.Config.Export.Currency,
				}
				if err := x.WritePTA(ctx, f); err != nil {
					return err
				}
				fmt.Println("wrote", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&out, "out", "pta_export.xlsx", "output file")
	return cmd
}

// --- helpers ---

func withEngine(ctx context.Context, fn func(context.Context, engine.Engine) error) error {
	workspace := viper.GetString("workspace")
	conn, e, err := app.OpenEngine(ctx, workspace)
	if err != nil {
		return err
	}
	defer conn.Close()
	return fn(ctx, e)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func opt(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func newID() string {
	return uuid.NewString()
}
