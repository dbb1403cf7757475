// Package library holds the node templates that new graph elements are
// built from.
//
// A template ([Component]) is static metadata published by an external
// library service: a stable GUID, display names, a category, and the ordered
// input and output [Parameter] definitions. The graph engine reads templates
// when it creates elements and never mutates them.
//
// # Sources
//
// Templates come from three places:
//
//   - [Parse]: a JSON document, either a plain array of components or a
//     GraphQL response carrying getInstalledComponents
//   - [ParseHCL]: a hand-written HCL file with component blocks
//   - [Client]: a live GraphQL endpoint, fetched with retry and cached
//
// [Load] picks the parser from a file extension.
//
// # HCL Format
//
//	component "a0d62394-a118-422d-abb3-6af115c75b25" {
//	  name     = "Addition"
//	  nickname = "A+B"
//	  category = "Maths"
//
//	  input "A" {
//	    type = "Generic Data"
//	  }
//	  input "B" {
//	    type = "Generic Data"
//	  }
//	  output "Result" {
//	    nickname = "R"
//	    type     = "Generic Data"
//	  }
//	}
package library
