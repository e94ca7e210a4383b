package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// version 由发布构建注入（-ldflags "-X main.version=v1.2.3"）；开发构建为 dev。
var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "错误：%v\n", err)
		}
		os.Exit(1)
	}
}
