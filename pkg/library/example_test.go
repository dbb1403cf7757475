package library_test

import (
	"fmt"

	"github.com/matzehuels/flowpen/pkg/library"
)

func ExampleParseHCL() {
	src := `
component "a0d62394" {
  name     = "Addition"
  nickname = "A+B"
  input "A" {}
  input "B" {}
  output "Result" {}
}
`
	lib, err := library.ParseHCL([]byte(src), "maths.hcl")
	if err != nil {
		panic(err)
	}
	c, _ := lib.Lookup("a0d62394")
	fmt.Println(c.Name, len(c.Inputs), len(c.Outputs))
	// Output: Addition 2 1
}
