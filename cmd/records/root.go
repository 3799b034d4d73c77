package records

import (
	"github.com/ValentinKolb/japi/cmd/util"
	"github.com/ValentinKolb/japi/lib/datastore"
	"github.com/ValentinKolb/japi/rpc/common"
	"github.com/ValentinKolb/japi/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

var Logger = logger.GetLogger("cli")

var (
	ds      *datastore.DataStore
	fetcher transport.IDocumentFetcher

	// RecordCommands represents the records command group
	RecordCommands = &cobra.Command{
		Use:                "records",
		Short:              "Fetch and normalize JSON:API records",
		Long:               `Fetch resources from a JSON:API service, normalize them into the record store and print the canonical records as JSON. The configuration can be set via command line flags or environment variables. The format of the environment variables is JAPI_<flag> (e.g. JAPI_ENDPOINTS=https://api.example.com)`,
		PersistentPreRunE:  setupDataStore,
		PersistentPostRunE: teardownDataStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add flags
	util.SetupSchemaFlags(RecordCommands)
	util.SetupClientFlags(RecordCommands)

	key := "metrics"
	RecordCommands.PersistentFlags().Bool(key, false, util.WrapString("Print the record store metrics (Prometheus text format) to stderr after the command"))

	// Add subcommands
	RecordCommands.AddCommand(allCmd)
	RecordCommands.AddCommand(getCmd)
	RecordCommands.AddCommand(relatedCmd)
	RecordCommands.AddCommand(createCmd)
	RecordCommands.AddCommand(modelsCmd)
}

// setupDataStore creates the datastore from the registry and fetcher configuration
func setupDataStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	registry, err := util.GetRegistry()
	if err != nil {
		return err
	}

	fetcher, err = util.GetFetcher()
	if err != nil {
		return err
	}

	ds = datastore.New(registry, fetcher)
	Logger.Debugf("datastore ready (%d models)", len(registry.Names()))
	return nil
}

// teardownDataStore prints the metrics (if requested) and closes the fetcher
func teardownDataStore(_ *cobra.Command, _ []string) error {
	defer common.SyncLoggers()
	if viper.GetBool("metrics") {
		ds.WriteMetrics(os.Stderr)
	}
	return fetcher.Close()
}
