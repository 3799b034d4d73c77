package util

import (
	"fmt"
	"github.com/ValentinKolb/japi/lib/model"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/serializer"
	"github.com/ValentinKolb/japi/rpc/transport"
	"github.com/ValentinKolb/japi/rpc/transport/http"
	"github.com/ValentinKolb/japi/rpc/transport/memory"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupSchemaFlags adds the flags describing the models and the offline fixtures
func SetupSchemaFlags(cmd *cobra.Command) {
	key := "models"
	cmd.PersistentFlags().String(key, "models.yaml", WrapString("Path of the YAML file declaring the models (name, attributes, hasMany, belongsTo)"))

	key = "fixtures"
	cmd.PersistentFlags().String(key, "", WrapString("Directory with JSON:API documents (<type>/index.json, <type>/<id>.json, <type>/<id>/<relationship>.json). If set, no network requests are made"))
}

// SetupClientFlags adds the flags of the HTTP document fetcher to a command
func SetupClientFlags(cmd *cobra.Command) {
	defaults := common.DefaultClientConfig()

	key := "timeout"
	cmd.PersistentFlags().Int(key, defaults.TimeoutSecond, WrapString("The timeout in seconds of a single request"))

	key = "endpoints"
	cmd.PersistentFlags().String(key, strings.Join(defaults.Endpoints, ","), WrapString("The base URL of the JSON:API service. Multiple endpoints can be specified as a comma-separated list (round-robin)"))

	key = "retries"
	cmd.PersistentFlags().Int(key, defaults.RetryCount, WrapString("How many times to try a request"))

	key = "header"
	cmd.PersistentFlags().StringSlice(key, nil, WrapString("Additional request header in the format 'Name=value' (e.g. 'Authorization=Bearer xyz'), can be repeated"))

	key = "breaker"
	cmd.PersistentFlags().Bool(key, defaults.Breaker.Enabled, WrapString("Whether to wrap requests in a circuit breaker"))

	key = "breaker-timeout"
	cmd.PersistentFlags().Int(key, defaults.Breaker.TimeoutSecond, WrapString("How long the circuit breaker stays open (in seconds)"))

	key = "breaker-threshold"
	cmd.PersistentFlags().Float64(key, defaults.Breaker.FailureThreshold, WrapString("Failure ratio at which the circuit breaker opens"))
}

// InitClientConfig initializes configuration from environment variables
func InitClientConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("japi")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetClientConfig reads client configuration from viper
func GetClientConfig() (*common.ClientConfig, error) {
	headers, err := ParsePairs(viper.GetStringSlice("header"))
	if err != nil {
		return nil, err
	}

	conf := common.DefaultClientConfig()
	conf.TimeoutSecond = viper.GetInt("timeout")
	conf.RetryCount = viper.GetInt("retries")
	conf.Endpoints = strings.Split(viper.GetString("endpoints"), ",")
	conf.Headers = headers
	conf.Breaker.Enabled = viper.GetBool("breaker")
	conf.Breaker.TimeoutSecond = viper.GetInt("breaker-timeout")
	conf.Breaker.FailureThreshold = viper.GetFloat64("breaker-threshold")

	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

// ParsePairs parses 'name=value' pairs (headers, attributes)
func ParsePairs(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid pair %q (expected name=value)", pair)
		}
		values[name] = strings.TrimSpace(value)
	}
	return values, nil
}

// GetRegistry loads the model registry from the configured schema file
func GetRegistry() (*model.Registry, error) {
	path := viper.GetString("models")
	registry, err := model.LoadRegistryFile(path)
	if err != nil {
		return nil, fmt.Errorf("load models from %s: %w", path, err)
	}
	return registry, nil
}

// GetFixtures creates a memory fetcher with the documents of a fixtures directory
func GetFixtures(dir string) (*memory.Fetcher, error) {
	f := memory.NewMemoryFetcher()
	if err := f.LoadDir(dir, serializer.NewJSONSerializer()); err != nil {
		return nil, fmt.Errorf("load fixtures from %s: %w", dir, err)
	}
	return f, nil
}

// GetFetcher creates the document fetcher based on configuration: a memory
// fetcher if fixtures are configured, an HTTP fetcher otherwise
func GetFetcher() (transport.IDocumentFetcher, error) {
	if dir := viper.GetString("fixtures"); dir != "" {
		f, err := GetFixtures(dir)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	config, err := GetClientConfig()
	if err != nil {
		return nil, err
	}
	f := http.NewHTTPFetcher(serializer.NewJSONSerializer())
	if err := f.Connect(*config); err != nil {
		return nil, err
	}
	return f, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
