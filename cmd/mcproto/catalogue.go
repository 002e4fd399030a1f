package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/vango-dev/mcproto/pkg/catalogue"
	"github.com/vango-dev/mcproto/pkg/schema"
)

type catalogueEntry struct {
	Phase     catalogue.Phase     `json:"phase"`
	Direction catalogue.Direction `json:"direction"`
	ID        int                 `json:"id"`
	Name      string              `json:"name"`
	Shape     string              `json:"shape,omitempty"`
}

func catalogueCmd() *cobra.Command {
	var (
		phaseName string
		dirName   string
		shapes    bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "List the packets of each phase and direction",
		Long: `List packet ids and names, optionally with their wire shapes.

Without --phase or --direction every table is listed.

Examples:
  mcproto catalogue --phase login
  mcproto catalogue --phase play --direction clientbound --shapes`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			phases := []catalogue.Phase{catalogue.Handshake, catalogue.Status, catalogue.Login, catalogue.Play}
			dirs := []catalogue.Direction{catalogue.Serverbound, catalogue.Clientbound}
			if phaseName != "" {
				p, _, err := parsePhaseDirection(phaseName, "serverbound")
				if err != nil {
					return err
				}
				phases = []catalogue.Phase{p}
			}
			if dirName != "" {
				_, d, err := parsePhaseDirection("handshake", dirName)
				if err != nil {
					return err
				}
				dirs = []catalogue.Direction{d}
			}

			out := cmd.OutOrStdout()
			enc := json.NewEncoder(out)
			for _, p := range phases {
				for _, d := range dirs {
					packets := catalogue.Packets(p, d)
					if len(packets) == 0 {
						continue
					}
					if !asJSON {
						fmt.Fprintf(out, "%s %s (%d packets)\n", p, d, len(packets))
					}
					for _, pkt := range packets {
						shape := ""
						if shapes && pkt.Shape != nil {
							shape = schema.Format(pkt.Shape)
						}
						if asJSON {
							if err := enc.Encode(catalogueEntry{p, d, pkt.ID, pkt.Name, shape}); err != nil {
								return err
							}
							continue
						}
						if shape != "" {
							fmt.Fprintf(out, "  0x%02X  %-24s %s\n", pkt.ID, pkt.Name, shape)
						} else {
							fmt.Fprintf(out, "  0x%02X  %s\n", pkt.ID, pkt.Name)
						}
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&phaseName, "phase", "p", "", "Only this phase")
	cmd.Flags().StringVarP(&dirName, "direction", "d", "", "Only this direction")
	cmd.Flags().BoolVar(&shapes, "shapes", false, "Print the wire shape of each packet")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON lines")

	return cmd
}
