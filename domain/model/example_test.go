package model_test

import (
	"fmt"

	"github.com/nao1215/tabimport/domain/model"
)

func ExampleDeriveSchemaName() {
	fmt.Println(model.DeriveSchemaName("data/hero_list.csv.gz", ""))
	fmt.Println(model.DeriveSchemaName("sales.xlsx", "q1"))
	// Output:
	// HeroList
	// SalesQ1
}

func ExampleCheckType() {
	fmt.Println(model.CheckType(model.ParseText("3.0", true), model.TypeInteger))
	fmt.Println(model.CheckType(model.ParseText("4", true), model.TypeFloat))
	fmt.Println(model.CheckType(model.ParseText("", true), model.TypeDate))
	// Output:
	// true
	// false
	// true
}
