package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"recipe-finder/internal/app"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
)

const name = "mealfinder"

// ServiceFactory 建立食譜服務，cleanup 在命令結束時呼叫
type ServiceFactory func(ctx context.Context, cfg *config.Config) (*recipe.Service, func(), error)

var (
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print results as JSON",
	}
	queryFlag = &cli.StringFlag{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Keep only recipes whose title or an ingredient contains this text",
	}
)

// NewCommand 建立根命令，factory 為 nil 時使用 app.BuildService
func NewCommand(factory ServiceFactory) *cli.Command {
	if factory == nil {
		factory = app.BuildService
	}

	var (
		svc     *recipe.Service
		cleanup func()
	)

	return &cli.Command{
		Name:                  name,
		Usage:                 "Find recipes by the ingredients you have",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error); logs go to stderr",
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "Recipe source base URL",
				Sources: cli.EnvVars("MEALDB_BASE_URL"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			cfg, err := config.LoadConfig()
			if err != nil {
				return ctx, fmt.Errorf("failed to load config: %w", err)
			}
			if baseURL := cmd.String("base-url"); baseURL != "" {
				cfg.MealDB.BaseURL = baseURL
			}

			if level := cmd.String("log-level"); level != "" {
				common.InitConsoleLogger(level)
			} else {
				common.InitNopLogger()
			}

			svc, cleanup, err = factory(ctx, cfg)
			if err != nil {
				return ctx, err
			}
			return ctx, nil
		},
		After: func(ctx context.Context, cmd *cli.Command) error {
			if cleanup != nil {
				cleanup()
			}
			common.Sync()
			return nil
		},
		Commands: []*cli.Command{
			searchCmd(func() *recipe.Service { return svc }),
			defaultCmd(func() *recipe.Service { return svc }),
			showCmd(func() *recipe.Service { return svc }),
			ingredientsCmd(func() *recipe.Service { return svc }),
		},
	}
}

func searchCmd(service func() *recipe.Service) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search recipes containing the given ingredients",
		ArgsUsage: "ingredient...",
		Description: `The first ingredient selects candidate recipes. When it has none, the next
ingredients are tried in order. Every other ingredient must appear in the
recipe's ingredient list or its instructions.

Without ingredients the default selection across categories is shown.`,
		Flags: []cli.Flag{queryFlag, jsonFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			recipes, err := service().Search(ctx, cmd.Args().Slice(), cmd.String("query"))
			if err != nil {
				return err
			}
			return writeRecipes(writer(cmd), recipes, cmd.Bool("json"))
		},
	}
}

func defaultCmd(service func() *recipe.Service) *cli.Command {
	return &cli.Command{
		Name:  "default",
		Usage: "Show a sample of recipes from each category",
		Flags: []cli.Flag{queryFlag, jsonFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			recipes, err := service().Default(ctx, cmd.String("query"))
			if err != nil {
				return err
			}
			return writeRecipes(writer(cmd), recipes, cmd.Bool("json"))
		},
	}
}

func showCmd(service func() *recipe.Service) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one recipe in full",
		ArgsUsage: "id",
		Flags:     []cli.Flag{jsonFlag},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return fmt.Errorf("show takes exactly one recipe id")
			}
			r, err := service().Lookup(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			return writeRecipe(writer(cmd), r, cmd.Bool("json"))
		},
	}
}

func ingredientsCmd(service func() *recipe.Service) *cli.Command {
	return &cli.Command{
		Name:  "ingredients",
		Usage: "List suggested ingredients",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, name := range service().SuggestedIngredients() {
				fmt.Fprintln(writer(cmd), name)
			}
			return nil
		},
	}
}

func writer(cmd *cli.Command) io.Writer {
	if root := cmd.Root(); root != nil && root.Writer != nil {
		return root.Writer
	}
	return os.Stdout
}
