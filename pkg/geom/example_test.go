package geom_test

import (
	"fmt"

	"github.com/matzehuels/treemap/pkg/geom"
)

func ExampleResolveBox() {
	r := geom.ResolveBox(geom.DefaultBox(), geom.Size{Width: 1000, Height: 500})
	fmt.Printf("%+v\n", r)
	// Output: {X:100 Y:50 Width:800 Height:400}
}

func ExampleParsePercent() {
	fmt.Println(geom.ParsePercent("25%", 200), geom.ParsePercent("right", 200), geom.ParsePercent("42", 200))
	// Output: 50 200 42
}
