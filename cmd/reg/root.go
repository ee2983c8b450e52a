package reg

import (
	"github.com/ValentinKolb/vcell/cmd/util"
	"github.com/ValentinKolb/vcell/lib/register"
	"github.com/ValentinKolb/vcell/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcRegister register.IRegister

	// RegisterCommands represents the reg command group
	RegisterCommands = &cobra.Command{
		Use:               "reg",
		Short:             "Perform register operations",
		PersistentPreRunE: setupRegisterClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the reg command
	util.SetupRPCClientFlags(RegisterCommands)

	// Set default shard ID for register operations
	RegisterCommands.PersistentFlags().Int("shard", 100, util.WrapString("ID of the shard to connect to"))

	// Add subcommands
	RegisterCommands.AddCommand(setCmd)
	RegisterCommands.AddCommand(swapCmd)
	RegisterCommands.AddCommand(getCmd)
	RegisterCommands.AddCommand(hasCmd)
	RegisterCommands.AddCommand(dropCmd)
	RegisterCommands.AddCommand(infoCmd)
	RegisterCommands.AddCommand(perfTestCmd)
}

// setupRegisterClient initializes the RPC register client
func setupRegisterClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// Get client configuration components
	config := util.GetClientConfig()
	shardId := util.GetShardID()

	// Get serializer and transport
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	// Create the register client
	rpcRegister, err = client.NewRPCRegister(
		shardId,
		*config,
		t,
		s,
	)

	return err
}
