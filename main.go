package main

import "github.com/junaidrashid-git/storefront-api/cmd"

func main() {
	cmd.Execute()
}
