package web

import (
	"context"
	"strings"

	zspotify "github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/baristaner/spotify-song-recommendation/internal/recommend"
	"github.com/baristaner/spotify-song-recommendation/internal/spotify"
)

// Platform is a per-request streaming platform client. Token reports the
// credential after any refresh made while serving the request.
type Platform interface {
	recommend.Platform
	Token() (*oauth2.Token, error)
}

// PlatformFactory builds a Platform for one session's token.
type PlatformFactory func(ctx context.Context, token *oauth2.Token) Platform

// SpotifyPlatforms returns a factory backed by the Spotify Web API. All
// clients share breaker. An empty baseURL uses the public API.
func SpotifyPlatforms(auth *spotifyauth.Authenticator, breaker *spotify.Breaker, baseURL string) PlatformFactory {
	return func(ctx context.Context, token *oauth2.Token) Platform {
		var opts []zspotify.ClientOption
		if baseURL != "" {
			opts = append(opts, zspotify.WithBaseURL(strings.TrimSuffix(baseURL, "/")+"/"))
		}
		api := zspotify.New(auth.Client(ctx, token), opts...)
		return spotify.New(api, spotify.WithBreaker(breaker))
	}
}
