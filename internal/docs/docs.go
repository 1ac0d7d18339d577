// Package docs registers the OpenAPI document served under /docs/.
// Regenerate with: swag init -g internal/web/server.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/callback": {
            "get": {
                "description": "Verifies the OAuth state cookie, exchanges the code and starts a session",
                "tags": ["Auth"],
                "summary": "OAuth callback",
                "parameters": [
                    {"type": "string", "description": "Authorization code", "name": "code", "in": "query"},
                    {"type": "string", "description": "OAuth state", "name": "state", "in": "query", "required": true}
                ],
                "responses": {
                    "303": {"description": "Redirect to /"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/web.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Core"],
                "summary": "Health",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/web.HealthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/web.HealthResponse"}}
                }
            }
        },
        "/history": {
            "get": {
                "description": "Lists playlists generated for the session user, newest first",
                "produces": ["application/json"],
                "tags": ["Recommendations"],
                "summary": "Run history",
                "parameters": [
                    {"type": "integer", "description": "Maximum number of runs (default 20)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/recommend.Run"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/web.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/web.ErrorResponse"}}
                }
            }
        },
        "/login": {
            "get": {
                "tags": ["Auth"],
                "summary": "Start Spotify login",
                "responses": {
                    "307": {"description": "Redirect to the Spotify authorize page"}
                }
            }
        },
        "/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "End the session",
                "responses": {
                    "303": {"description": "Redirect to /"}
                }
            }
        },
        "/profile/moods": {
            "get": {
                "description": "Groups the audio features of the user's recent top tracks into named moods",
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Mood groups",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/recommend.MoodSummary"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/web.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/web.ErrorResponse"}}
                }
            }
        },
        "/recommendation/{strategy}": {
            "get": {
                "description": "Builds a taste profile, requests matching tracks and appends them to the recommendation playlist",
                "produces": ["application/json"],
                "tags": ["Recommendations"],
                "summary": "Generate a playlist",
                "parameters": [
                    {
                        "enum": ["bytopsongs", "byartistandgenre", "byrecentlyplayed"],
                        "type": "string",
                        "description": "Seed selection strategy",
                        "name": "strategy",
                        "in": "path",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/recommend.Result"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/web.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/web.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/web.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/web.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/web.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "recommend.MoodSummary": {
            "type": "object",
            "properties": {
                "moods": {"type": "array", "items": {"$ref": "#/definitions/clustering.Mood"}},
                "outliers": {"type": "array", "items": {"type": "string"}}
            }
        },
        "clustering.Mood": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "description": {"type": "string"},
                "track_ids": {"type": "array", "items": {"type": "string"}},
                "centroid": {"type": "object", "additionalProperties": {"type": "number"}}
            }
        },
        "recommend.RecommendedTrack": {
            "type": "object",
            "properties": {
                "album": {"type": "string"},
                "artist": {"type": "string"},
                "track": {"type": "string"},
                "uri": {"type": "string"}
            }
        },
        "recommend.Result": {
            "type": "object",
            "properties": {
                "playlist_id": {"type": "string"},
                "profile": {"type": "object", "additionalProperties": {"type": "number"}},
                "query": {"$ref": "#/definitions/taste.Query"},
                "strategy": {"type": "string"},
                "tracks": {"type": "array", "items": {"$ref": "#/definitions/recommend.RecommendedTrack"}}
            }
        },
        "recommend.Run": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "id": {"type": "string"},
                "playlist_id": {"type": "string"},
                "seeds": {"$ref": "#/definitions/taste.Seeds"},
                "strategy": {"type": "string"},
                "track_count": {"type": "integer"},
                "user_id": {"type": "string"}
            }
        },
        "taste.Query": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "min_popularity": {"type": "integer"},
                "seeds": {"$ref": "#/definitions/taste.Seeds"},
                "thresholds": {"type": "array", "items": {"$ref": "#/definitions/taste.Threshold"}}
            }
        },
        "taste.Seeds": {
            "type": "object",
            "properties": {
                "artist_ids": {"type": "array", "items": {"type": "string"}},
                "genres": {"type": "array", "items": {"type": "string"}},
                "track_ids": {"type": "array", "items": {"type": "string"}}
            }
        },
        "taste.Threshold": {
            "type": "object",
            "properties": {
                "bound": {"type": "string", "enum": ["min", "max"]},
                "feature": {"type": "string"},
                "value": {"type": "number"}
            }
        },
        "web.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "web.HealthResponse": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Spotify Song Recommendation API",
	Description:      "Builds playlists from the audio-feature profile of a user's listening history.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
