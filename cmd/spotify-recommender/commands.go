package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"
	zspotify "github.com/zmb3/spotify/v2"

	"github.com/baristaner/spotify-song-recommendation/internal/auth"
	"github.com/baristaner/spotify-song-recommendation/internal/clustering"
	"github.com/baristaner/spotify-song-recommendation/internal/config"
	"github.com/baristaner/spotify-song-recommendation/internal/db"
	"github.com/baristaner/spotify-song-recommendation/internal/lastfm"
	"github.com/baristaner/spotify-song-recommendation/internal/logging"
	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
	"github.com/baristaner/spotify-song-recommendation/internal/spotify"
	"github.com/baristaner/spotify-song-recommendation/internal/web"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP service",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides server.addr)",
			},
		},
		Action: serve,
	}
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Log in through the browser and generate one playlist",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strategy",
				Aliases: []string{"s"},
				Usage:   "Seed strategy: " + strategyNames(),
				Value:   recommend.ByTopSongs,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the full result as JSON",
			},
		},
		Action: runRecommend,
	}
}

func moodsCommand() *cli.Command {
	return &cli.Command{
		Name:  "moods",
		Usage: "Log in through the browser and group recent top tracks by mood",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "clusters",
				Usage: "Number of mood groups",
				Value: clustering.DefaultConfig().NumClusters,
			},
		},
		Action: runMoods,
	}
}

func strategiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "strategies",
		Usage: "List the available seed strategies",
		Action: func(_ context.Context, cmd *cli.Command) error {
			w := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tMIN POPULARITY\tLIMIT")
			for _, s := range recommend.Strategies() {
				fmt.Fprintf(w, "%s\t%d\t%d\n", s.Name, s.PopularityFloor, s.Limit)
			}
			return w.Flush()
		},
	}
}

// loadConfig reads configuration and initializes logging. The global
// --config flag takes precedence over CONFIG_PATH.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	if path := cmd.String("config"); path != "" {
		if err := os.Setenv(config.ConfigPathEnvVar, path); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	serverCfg := web.ServerConfig{
		Addr:              cfg.Server.Addr,
		ClientID:          cfg.Spotify.ClientID,
		ClientSecret:      cfg.Spotify.ClientSecret,
		RedirectURI:       cfg.Server.RedirectURI,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		CORSOrigins:       cfg.Server.CORSOrigins,
		Recommend:         recommendConfig(cfg),
		DetailConcurrency: cfg.Recommend.DetailConcurrency,
		SpotifyBaseURL:    cfg.Spotify.BaseURL,
		Breaker:           newBreaker(cfg),
	}

	if database, err := openDatabase(ctx, cfg); err != nil {
		return err
	} else if database != nil {
		defer database.Close()
		serverCfg.History = database.Runs()
		serverCfg.Database = database
	}

	if fb := genreFallback(cfg); fb != nil {
		serverCfg.Fallback = fb
	}

	server, err := web.NewServer(serverCfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

func runRecommend(ctx context.Context, cmd *cli.Command) error {
	strategy, ok := recommend.StrategyByName(cmd.String("strategy"))
	if !ok {
		return fmt.Errorf("unknown strategy %q (want one of %s)", cmd.String("strategy"), strategyNames())
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := login(ctx, cfg)
	if err != nil {
		return err
	}

	opts := []recommend.Option{recommend.WithConcurrency(cfg.Recommend.DetailConcurrency)}
	if fb := genreFallback(cfg); fb != nil {
		opts = append(opts, recommend.WithGenreFallback(fb))
	}

	database, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	if database != nil {
		defer database.Close()
		opts = append(opts, recommend.WithRecorder(database.Runs()))
	}

	result, err := recommend.NewService(client, recommendConfig(cfg), opts...).Run(ctx, strategy)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if cmd.Bool("json") {
		return printJSON(out, result)
	}

	fmt.Fprintf(out, "Added %d tracks to playlist %s (%s)\n\n", len(result.Tracks), result.PlaylistID, result.Strategy)
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRACK\tARTIST\tALBUM")
	for _, t := range result.Tracks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Track, t.Artist, t.Album)
	}
	return w.Flush()
}

func runMoods(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	client, err := login(ctx, cfg)
	if err != nil {
		return err
	}

	moodCfg := clustering.DefaultConfig()
	moodCfg.NumClusters = int(cmd.Int("clusters"))

	summary, err := recommend.NewService(client, recommendConfig(cfg)).Moods(ctx, moodCfg)
	if err != nil {
		return err
	}
	return printJSON(cmd.Root().Writer, summary)
}

// login runs the loopback OAuth flow and returns a Spotify client for the
// user.
func login(ctx context.Context, cfg *config.Config) (*spotify.Client, error) {
	authenticator, err := auth.New(auth.Config{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Server.RedirectURI,
	})
	if err != nil {
		return nil, err
	}

	token, err := authenticator.Authenticate(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	var opts []zspotify.ClientOption
	if cfg.Spotify.BaseURL != "" {
		opts = append(opts, zspotify.WithBaseURL(strings.TrimSuffix(cfg.Spotify.BaseURL, "/")+"/"))
	}
	api := zspotify.New(authenticator.Client(ctx, token), opts...)
	return spotify.New(api, spotify.WithBreaker(newBreaker(cfg))), nil
}

func newBreaker(cfg *config.Config) *spotify.Breaker {
	return spotify.NewBreaker(spotify.BreakerConfig{
		MaxFailures: cfg.Spotify.Breaker.MaxFailures,
		Timeout:     cfg.Spotify.Breaker.Timeout,
		Interval:    cfg.Spotify.Breaker.Interval,
	})
}

func recommendConfig(cfg *config.Config) recommend.Config {
	return recommend.Config{
		PlaylistName:        cfg.Recommend.PlaylistName,
		PlaylistDescription: cfg.Recommend.PlaylistDescription,
	}
}

// openDatabase connects and migrates when a database URL is configured.
// It returns nil without one.
func openDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	if cfg.Database.URL == "" {
		logging.Info().Msg("no database configured, run history disabled")
		return nil, nil
	}

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return database, nil
}

// genreFallback returns the Last.fm client, or nil when no API key is set.
func genreFallback(cfg *config.Config) recommend.GenreFallback {
	client, err := lastfm.NewClient(lastfm.Config{APIKey: cfg.LastFM.APIKey})
	if err != nil {
		logging.Info().Err(err).Msg("Last.fm genre fallback disabled")
		return nil
	}
	return client
}

func strategyNames() string {
	names := make([]string, 0, 3)
	for _, s := range recommend.Strategies() {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
