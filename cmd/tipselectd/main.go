// Command tipselectd runs the tip selection core as a standalone HTTP
// service over an in-memory or badger-backed Store, config-driven the way
// node.New reads "tipselectd.yaml" via viper in node/node.go.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lunfardo314/tipselect/dag"
	"github.com/lunfardo314/tipselect/depth"
	"github.com/lunfardo314/tipselect/global"
	"github.com/lunfardo314/tipselect/milestone"
	"github.com/lunfardo314/tipselect/rpc"
	"github.com/lunfardo314/tipselect/store"
	"github.com/lunfardo314/tipselect/tipselect"
	"github.com/lunfardo314/tipselect/util"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "tipselectd",
		Short: "tip selection core daemon",
		Run:   runDaemon,
	}
	root.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding tipselectd.yaml")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(_ *cobra.Command, _ []string) {
	viper.SetConfigName("tipselectd")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configPath)
	viper.SetDefault("store.badger_dir", "")
	viper.SetDefault("trace_tags", []string{})
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "tipselectd: no config found at %s/tipselectd.yaml, using defaults: %v\n", configPath, err)
	}

	g := global.NewDefault()
	g.StartTracingTags(viper.GetStringSlice("trace_tags")...)

	var s store.Store
	if dir := viper.GetString("store.badger_dir"); dir != "" {
		b, err := store.OpenBadger(dir)
		util.AssertNoError(err, "opening badger store")
		s = b
	} else {
		s = store.NewMemory()
	}

	view := dag.NewView(s)
	mt := milestone.NewInMemory()
	cfg := tipselect.Config{
		MaxDepth:            uint32(viperDefaultInt("tipselect.max_depth", tipselect.MaxDepth)),
		MilestoneStartIndex: uint32(viperDefaultInt("tipselect.milestone_start_index", 0)),
		Testnet:             viper.GetBool("testnet"),
	}

	sel := tipselect.New(g, view, mt, cfg)
	guard := depth.New(view)
	server := rpc.New(g, sel, guard, mt, cfg)

	addr := fmt.Sprintf(":%d", rpc.PortFromConfig())
	server.RunOn(addr)
}

func viperDefaultInt(key string, def int) int {
	viper.SetDefault(key, def)
	return viper.GetInt(key)
}
