// The main package for the movie-scraper executable.
package main

import (
	"github.com/R41CY/movie-scraper/cmd"
)

func main() {
	cmd.Execute()
}
