package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/flowmation/yandexcloud-nodes/internal/log"
	"github.com/flowmation/yandexcloud-nodes/internal/node/lockbox"
	"github.com/flowmation/yandexcloud-nodes/internal/node/postbox"
	"github.com/flowmation/yandexcloud-nodes/internal/node/queue"
	"github.com/flowmation/yandexcloud-nodes/internal/node/ygpt"
	"github.com/flowmation/yandexcloud-nodes/pkg/node"
)

// metadataNodes returns one instance of every node with no client
// attached, enough to describe names and operations without
// credentials.
func metadataNodes() []node.Node {
	return []node.Node{
		queue.New(nil, nil),
		postbox.New(nil, nil),
		lockbox.New(nil, nil, "", nil),
		ygpt.New(nil, "", nil, nil),
	}
}

func newNodesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "nodes",
		Short: "List available nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			nodes := metadataNodes()
			sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name() < nodes[j].Name() })
			for _, n := range nodes {
				fmt.Printf("%s %s\n",
					styleName.Render(n.Name()),
					styleMuted.Render(fmt.Sprintf("(%d operations)", len(n.Operations()))))
			}
			return nil
		},
	}
}

func newOpsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ops <node>",
		Short: "List a node's operations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, n := range metadataNodes() {
				if n.Name() != args[0] {
					continue
				}
				fmt.Println(styleHeader.Render(n.Name()))
				for _, op := range n.Operations() {
					line := fmt.Sprintf("  %-28s %s", styleName.Render(op.Name), op.Description)
					if op.Paginated {
						line += " " + renderTag("paginated")
					}
					if op.Destructive {
						line += " " + styleWarn.Render("[destructive]")
					}
					fmt.Println(line)
				}
				return nil
			}
			return fmt.Errorf("unknown node %q", args[0])
		},
	}
}

func newRunCommand(opts *rootOptions) *cobra.Command {
	var paramsJSON string
	var paramsFile string

	cmd := &cobra.Command{
		Use:   "run <node> <operation>",
		Short: "Run one node operation",
		Long: `Run one node operation with JSON parameters and print the resulting
items as JSON. Parameters come from --params or --params-file; "-"
reads them from stdin.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := loadParams(paramsJSON, paramsFile)
			if err != nil {
				return err
			}

			cfg, logCfg, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()
			logger := log.New(logCfg)

			registry, release, err := buildRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer release()

			n, err := registry.Get(args[0])
			if err != nil {
				return err
			}
			result, err := node.Execute(cmd.Context(), n, args[1], params)
			if err != nil {
				return err
			}
			return printJSON(result.Items)
		},
	}
	cmd.Flags().StringVar(&paramsJSON, "params", "", "Operation parameters as a JSON object")
	cmd.Flags().StringVar(&paramsFile, "params-file", "", "Read parameters from a JSON file, - for stdin")
	return cmd
}

func newSearchCommand(opts *rootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "search <node> [filter]",
		Short: "Search a node's remote resources",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ""
			if len(args) == 2 {
				filter = args[1]
			}

			cfg, logCfg, cleanup, err := opts.setup()
			if err != nil {
				return err
			}
			defer cleanup()
			logger := log.New(logCfg)

			registry, release, err := buildRegistry(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer release()

			n, err := registry.Get(args[0])
			if err != nil {
				return err
			}
			searcher, ok := n.(node.Searcher)
			if !ok {
				return fmt.Errorf("node %q has no resource locator", args[0])
			}
			results, err := searcher.Search(cmd.Context(), kind, filter, node.Params{})
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "Entity collection to search when a node exposes several")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("ycnodes %s (commit %s, built %s)\n", version, commit, buildDate)
			return nil
		},
	}
}

// loadParams decodes the operation parameters from the flag, a file or
// stdin. Absent parameters yield an empty set.
func loadParams(paramsJSON, paramsFile string) (node.Params, error) {
	var raw []byte
	switch {
	case paramsJSON != "":
		raw = []byte(paramsJSON)
	case paramsFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read params from stdin: %w", err)
		}
		raw = data
	case paramsFile != "":
		data, err := os.ReadFile(paramsFile)
		if err != nil {
			return nil, fmt.Errorf("read params file: %w", err)
		}
		raw = data
	default:
		return node.Params{}, nil
	}

	params := node.Params{}
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	return params, nil
}
