// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	ctf "github.com/saferwall/ctf"
	"github.com/saferwall/ctf/log"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <stream-file>",
	Short: "Dump every packet boundary of a CTF stream file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return dumpStream(args[0])
	},
}

// dumpStream walks a bare stream file packet by packet against
// ctf.DefaultPacketSchema, printing the header/context fields every
// babeltrace-style CTF reader surfaces first, the same way teacher's
// pedumper prints one tabwriter block per structure it finds.
func dumpStream(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	logger := log.NewHelper(log.NewFilter(log.NewStdLogger(os.Stdout), log.FilterLevel(log.LevelInfo)))

	header, context, err := ctf.DefaultPacketSchema()
	if err != nil {
		return err
	}

	pos, err := ctf.NewReaderPosition(f, logger)
	if err != nil {
		return err
	}
	defer pos.Close(-1)

	w := tabwriter.NewWriter(os.Stdout, 1, 1, 3, ' ', tabwriter.AlignRight)
	packetNum := 0
	for {
		if err := pos.NextPacket(); err != nil {
			break
		}

		headerField, err := ctf.NewField(header)
		if err != nil {
			return err
		}
		contextField, err := ctf.NewField(context)
		if err != nil {
			return err
		}

		if err := pos.ReadPacket(headerField, contextField); err != nil {
			if packetNum == 0 {
				return fmt.Errorf("reading packet %d: %w", packetNum, err)
			}
			break
		}

		fmt.Fprintf(os.Stdout, "\n\t------[ Packet #%d ]------\n\n", packetNum)
		printStructureField(w, "header", headerField)
		printStructureField(w, "context", contextField)
		w.Flush()

		sizeBits, err := ctf.PacketSizeBits(contextField)
		if err != nil || sizeBits == 0 {
			break
		}
		if err := pos.PadToBits(sizeBits); err != nil {
			break
		}
		packetNum++
	}

	fmt.Printf("\n%d packet(s) found.\n", packetNum)
	return nil
}

func printStructureField(w *tabwriter.Writer, scope string, f ctf.Field) {
	names, values := ctf.FlattenIntegerFields(f)
	for i, name := range names {
		fmt.Fprintf(w, "%s.%s:\t 0x%x\n", scope, name, values[i])
	}
}
