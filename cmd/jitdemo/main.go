// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command jitdemo builds a small in-memory table, compiles a jittable
// sub-plan against it with pkg/jit and prints the result.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/daviszhen/rowjit/pkg/jit"
)

func init() {
	cobra.OnInitialize(loadConfig)
	initRunCmd()
	initExplainCmd()
}

var demoCfg = &Config{}

// Config mirrors the tester.toml shape: a handful of engine feature
// flags plus how many demo rows to generate.
type Config struct {
	Engine struct {
		LazyLoad            bool `tag:"lazyLoad"`
		ValueIDAcceleration bool `tag:"valueIdAcceleration"`
		JitValidate         bool `tag:"jitValidate"`
		MaxOutputChunkSize  int  `tag:"maxOutputChunkSize"`
	} `tag:"engine"`
	Demo struct {
		Rows      int `tag:"rows"`
		ChunkSize int `tag:"chunkSize"`
	} `tag:"demo"`
}

var logger *zap.Logger

var info = "jitdemo"
var RootCmd = &cobra.Command{
	Use:          "jitdemo",
	Short:        info,
	Long:         info,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("use jitdemo --help or -h")
	},
}

func engineConfig() jit.EngineConfig {
	return jit.EngineConfig{
		LazyLoadEnabled:            viper.GetBool("engine.lazyLoad"),
		ValueIDAccelerationEnabled: viper.GetBool("engine.valueIdAcceleration"),
		JitValidateEnabled:         viper.GetBool("engine.jitValidate"),
		MaxOutputChunkSize:         viper.GetInt("engine.maxOutputChunkSize"),
	}
}

var runInfo = "run the age>threshold demo query over a generated table"
var runCmd = &cobra.Command{
	Use:   "run",
	Short: runInfo,
	Long:  runInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := viper.GetInt("demo.rows")
		chunkSize := viper.GetInt("demo.chunkSize")
		table := buildDemoTable(rows, chunkSize)
		plan := ageFilterPlan(table, 30)

		cfg := engineConfig()
		chain, err := jit.Translate(plan, cfg)
		if err != nil {
			logger.Warn("plan rejected, falling back is out of scope for this demo", zap.Error(err))
			return err
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		cancelCh := make(chan struct{})
		go func() {
			<-sigCh
			close(cancelCh)
		}()
		defer signal.Stop(sigCh)
		cancel := jit.NewSignalCancellationToken(cancelCh)

		start := time.Now()
		out, err := chain.Execute(table, nil, jit.Snapshot{}, cancel)
		if err != nil {
			return err
		}
		logger.Info("query finished",
			zap.Int("inputRows", rows),
			zap.Int("outputChunks", out.ChunkCount()),
			zap.Duration("elapsed", time.Since(start)))
		printOutput(out)
		return nil
	},
}

var explainInfo = "print the compiled operator chain for the demo query"
var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: explainInfo,
	Long:  explainInfo,
	RunE: func(cmd *cobra.Command, args []string) error {
		table := buildDemoTable(viper.GetInt("demo.rows"), viper.GetInt("demo.chunkSize"))
		plan := ageFilterPlan(table, 30)
		chain, err := jit.Translate(plan, engineConfig())
		if err != nil {
			return err
		}
		fmt.Println(chain.Explain())
		return nil
	},
}

func initRunCmd() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().Int("rows", 10000, "number of demo rows to generate")
	runCmd.Flags().Int("chunk_size", 1024, "chunk size used by the generated table")
	viper.BindPFlag("demo.rows", runCmd.Flags().Lookup("rows"))
	viper.BindPFlag("demo.chunkSize", runCmd.Flags().Lookup("chunk_size"))
}

func initExplainCmd() {
	RootCmd.AddCommand(explainCmd)
}

var defCfgFilePaths = []string{".", "etc/jitdemo"}
var cfgFileName = "jitdemo.toml"

func loadConfig() {
	viper.SetDefault("engine.lazyLoad", true)
	viper.SetDefault("engine.valueIdAcceleration", true)
	viper.SetDefault("engine.jitValidate", true)
	viper.SetDefault("engine.maxOutputChunkSize", 2048)
	viper.SetDefault("demo.rows", 10000)
	viper.SetDefault("demo.chunkSize", 1024)

	for _, dirPath := range defCfgFilePaths {
		fpath := filepath.Join(dirPath, cfgFileName)
		if _, err := os.Stat(fpath); err != nil {
			continue
		}
		viper.SetConfigFile(fpath)
		if err := viper.ReadInConfig(); err != nil {
			logger.Warn("failed to read config file, using defaults", zap.String("path", fpath), zap.Error(err))
		}
		break
	}
}

func main() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := RootCmd.Execute(); err != nil {
		logger.Error("jitdemo failed", zap.Error(err))
		os.Exit(1)
	}
}
