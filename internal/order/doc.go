// Package order reads print order documents and discovers them on disk.
//
// The package handles two main use cases:
//
//  1. Parsing an order document into a model.CardSet
//  2. Finding order files in directories given on the command line
//
// # Order Documents
//
// An order is an XML document of this shape:
//
//	<order>
//	  <details><quantity>10</quantity></details>
//	  <fronts>
//	    <card><id>1a2b</id><slots>0,2-4</slots><name>Island.png</name></card>
//	  </fronts>
//	  <backs>
//	    <card><id>9z8y</id><slots>0</slots></card>
//	  </backs>
//	  <cardback>5c6d</cardback>
//	</order>
//
// The cardback fills any back slot that no back card covers. Fronts have
// no fallback.
//
// # Discovery
//
//	files, err := order.ExpandInputs([]string{"orders/", "extra.xml"})
//	if errors.Is(err, order.ErrNoOrderFound) {
//	    fmt.Println("nothing to print")
//	}
package order
