// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication with the Chorus backend",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in through an identity provider or with a password",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "provider",
						Aliases: []string{"p"},
						Usage:   "Identity provider (spotify or google)",
						Value:   "spotify",
					},
					&cli.StringFlag{
						Name:    "username",
						Aliases: []string{"u"},
						Usage:   "Log in with a username and password instead of a provider",
					},
					&cli.StringFlag{
						Name:  "password",
						Usage: "Password for --username (prompted when omitted)",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Show the current session",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.AuthStatus,
			},
			{
				Name:   "logout",
				Usage:  "Tear down the backend session and clear saved credentials",
				Action: r.AuthLogout,
			},
		},
	}
}

// usernameCommand handles username availability operations
func usernameCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "username",
		Usage: "Username availability checks",
		Commands: []*cli.Command{
			{
				Name:  "check",
				Usage: "Check whether a username is available for registration",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "name",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "watch",
						Usage: "Read candidate usernames from stdin and check each after a quiet period",
					},
					&cli.StringFlag{
						Name:  "current",
						Usage: "Your current username; it is never checked against the backend",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.UsernameCheck,
			},
		},
	}
}

// setupCommand handles setup operations for configuration and the local database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize the session database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Create a config.toml with default settings",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path for the new configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}
