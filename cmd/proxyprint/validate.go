package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/layout"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/model"
	"github.com/JohnnyEch0/MPCFILL-Edge-remover/internal/order"
)

// validateCmd checks orders without fetching anything.
var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Check print orders for parse errors and uncovered slots",
	Long: `Validate parses every order given as a file or found in a directory and checks
that each front and back slot is covered by an image. It reports the quantity,
distinct images and page count of each order, and the missing slots of each
face that fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := order.ExpandInputs(args)
		if err != nil {
			return err
		}

		lc, err := settings.ToLayoutConfig()
		if err != nil {
			return err
		}
		grid, err := layout.NewGrid(lc)
		if err != nil {
			return err
		}

		parser := order.NewParser(log)

		fmt.Println("Validation Results:")
		fmt.Println("-------------------")

		invalid := 0
		for _, file := range files {
			set, err := parser.ParseFile(file)
			if err != nil {
				invalid++
				fmt.Printf("%s %s\n", errorColor.Sprint("✗"), err)
				continue
			}

			pages := len(layout.PageGroups(set.Quantity, grid.Capacity()))
			summary := fmt.Sprintf("%s: %d cards, %d images, %d page(s)",
				set.Name, set.Quantity, len(set.SourceIDs()), pages)

			if set.Validate() == nil {
				fmt.Printf("%s %s\n", successColor.Sprint("✓"), summary)
				continue
			}

			invalid++
			fmt.Printf("%s %s\n", errorColor.Sprint("✗"), summary)
			for _, kind := range model.FaceKinds {
				if missing := missingSlots(set, kind); len(missing) > 0 {
					fmt.Printf("    %s face: missing slots %s\n", kind, formatSlots(missing))
				}
			}
		}

		if invalid > 0 {
			return fmt.Errorf("%d of %d order(s) invalid", invalid, len(files))
		}
		return nil
	},
}

func missingSlots(set *model.CardSet, kind model.FaceKind) []int {
	face := set.Face(kind)
	if face == nil {
		return model.SlotRange(set.Quantity).Sorted()
	}
	return face.Missing().Sorted()
}

// formatSlots folds consecutive slots into ranges: [0 1 2 5] -> "0-2,5".
func formatSlots(slots []int) string {
	var parts []string
	for i := 0; i < len(slots); {
		j := i
		for j+1 < len(slots) && slots[j+1] == slots[j]+1 {
			j++
		}
		if j > i {
			parts = append(parts, strconv.Itoa(slots[i])+"-"+strconv.Itoa(slots[j]))
		} else {
			parts = append(parts, strconv.Itoa(slots[i]))
		}
		i = j + 1
	}
	return strings.Join(parts, ",")
}
