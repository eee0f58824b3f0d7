package main

import (
	_ "git.campusqa.org/campusqa/campusqa/src/admintools"
	_ "git.campusqa.org/campusqa/campusqa/src/migration"
	"git.campusqa.org/campusqa/campusqa/src/website"
)

func main() {
	website.WebsiteCommand.Execute()
}
