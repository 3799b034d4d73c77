package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/japi/cmd/util"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/serializer"
	"github.com/ValentinKolb/japi/rpc/transport/http"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	nethttp "net/http"
	"time"
)

var Logger = logger.GetLogger("cli")

var (
	ServeCmd = &cobra.Command{
		Use:     "serve",
		Short:   "Serve a fixtures directory as a read-only JSON:API service",
		Long:    `Serve the JSON:API documents of a fixtures directory over HTTP. The configuration can be set via command line flags or environment variables. The format of the environment variables is JAPI_<flag> (e.g. JAPI_ENDPOINT=0.0.0.0:9090)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// add flags
	cmdUtil.SetupSchemaFlags(ServeCmd)

	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen"))

	key = "pretty"
	ServeCmd.PersistentFlags().Bool(key, false, cmdUtil.WrapString("Whether to indent the served documents"))
}

// processConfig binds the flags and checks that a fixtures directory is set
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if viper.GetString("fixtures") == "" {
		return fmt.Errorf("--fixtures is required")
	}
	return common.InitLoggers(viper.GetString("log-level"))
}

// run starts the document server
func run(_ *cobra.Command, _ []string) error {
	defer common.SyncLoggers()

	registry, err := cmdUtil.GetRegistry()
	if err != nil {
		return err
	}
	source, err := cmdUtil.GetFixtures(viper.GetString("fixtures"))
	if err != nil {
		return err
	}

	s := serializer.NewJSONSerializer()
	if viper.GetBool("pretty") {
		s = serializer.NewPrettyJSONSerializer()
	}
	debug := viper.GetString("log-level") == "debug"

	server := &nethttp.Server{
		Addr:              viper.GetString("endpoint"),
		Handler:           http.NewDocumentServer(registry, source, s, debug),
		ReadHeaderTimeout: 10 * time.Second,
	}
	Logger.Infof("serving %s on %s (%d models)", viper.GetString("fixtures"), server.Addr, len(registry.Names()))
	return server.ListenAndServe()
}
