package config

import (
	"flag"
	"os"
	"time"

	"github.com/dbocharov/newsletter/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8000")
//	-d string   PostgreSQL DSN
//	-b string   public base URL for confirmation links
//	-m string   email API endpoint
//	-f string   sender address for outgoing email
//	-k string   email API authorization token
//	-t int      email API call timeout, seconds
//	-i int      session idle timeout, minutes
//	-s string   secret key for session cookie authentication
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Duration flags are accepted as integers and converted to time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-b", "-m", "-f", "-k", "-t", "-i", "-s"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BaseURL, "b", config.BaseURL, "public base URL")
	fs.StringVar(&config.EmailEndpoint, "m", config.EmailEndpoint, "email API endpoint")
	fs.StringVar(&config.EmailSender, "f", config.EmailSender, "sender address")
	fs.StringVar(&config.EmailAuthToken, "k", config.EmailAuthToken, "email API authorization token")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key for session cookie authentication")

	emailTimeout := fs.Int("t", int(config.EmailTimeout.Seconds()), "email_timeout (in seconds)")
	sessionIdleTimeout := fs.Int("i", int(config.SessionIdleTimeout.Minutes()), "session_idle_timeout (in minutes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.EmailTimeout = time.Duration(*emailTimeout) * time.Second
	config.SessionIdleTimeout = time.Duration(*sessionIdleTimeout) * time.Minute
}
