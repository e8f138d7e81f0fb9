// Command invite prints or copies the invite message for a profile.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/pefman/health-duel/internal/profile"
)

func main() {
	user := flag.String("user", "", "profile id to invite against")
	origin := flag.String("origin", getenv("PUBLIC_ORIGIN", "http://localhost:8081"), "public origin of the web app")
	printOnly := flag.Bool("print", false, "print the message instead of copying it")
	flag.Parse()

	if strings.TrimSpace(*user) == "" {
		fmt.Fprintln(os.Stderr, "usage: invite -user <profile id> [-origin url] [-print]")
		os.Exit(2)
	}
	msg := profile.ShareMessage(profile.InviteLink(*origin, *user))
	if *printOnly {
		fmt.Println(msg)
		return
	}
	if err := clipboard.WriteAll(msg); err != nil {
		// headless machines have no clipboard
		log.Printf("clipboard unavailable (%v), printing instead", err)
		fmt.Println(msg)
		return
	}
	fmt.Println("Invite copied to clipboard:")
	fmt.Println(msg)
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
