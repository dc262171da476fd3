package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"examgen"
)

// Player represents a player in play mode
type Player struct {
	Name  string
	Score int
}

const optionLetters = "ABCDEFGHIJ"

func playQuiz(records []examgen.QuestionRecord, numPlayers int) {
	if len(records) == 0 {
		fmt.Println("No questions were generated.")
		return
	}
	if numPlayers < 1 {
		numPlayers = 1
	}

	fmt.Printf("🎯 Starting interactive quiz\n")
	fmt.Printf("📝 Questions: %d\n", len(records))
	fmt.Printf("👥 Players: %d\n\n", numPlayers)

	scanner := bufio.NewScanner(os.Stdin)
	players := make([]*Player, numPlayers)
	for i := range players {
		fmt.Printf("Enter name for Player %d: ", i+1)
		scanner.Scan()
		name := strings.TrimSpace(scanner.Text())
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		players[i] = &Player{Name: name}
	}
	fmt.Println()

	for n, record := range records {
		fmt.Printf("Question %d/%d:\n", n+1, len(records))
		fmt.Printf("%s\n\n", record.Question)
		if record.Difficulty != "" {
			fmt.Printf("(difficulty: %s)\n\n", record.Difficulty)
		}

		if record.Answer.IsMultipleChoice() {
			askMultipleChoice(scanner, record, players)
		} else {
			askOpen(scanner, record, players)
		}

		fmt.Println("\n📊 Current Scores:")
		for _, player := range players {
			percentage := float64(player.Score) / float64(n+1) * 100
			fmt.Printf("  %s: %d/%d (%.1f%%)\n", player.Name, player.Score, n+1, percentage)
		}
		fmt.Println()
		fmt.Println(strings.Repeat("─", 50))
		fmt.Println()
	}

	fmt.Println("🎉 Quiz completed!")
	fmt.Println("\n🏆 Final Results:")

	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	medals := []string{"🥇", "🥈", "🥉"}
	for i, player := range players {
		percentage := float64(player.Score) / float64(len(records)) * 100
		prefix := "  "
		if i < len(medals) && i < numPlayers {
			prefix = medals[i]
		}
		fmt.Printf("%s %s: %d/%d (%.1f%%)\n", prefix, player.Name, player.Score, len(records), percentage)
	}

	best := float64(players[0].Score) / float64(len(records))
	switch {
	case best >= 0.8:
		fmt.Println("🌟 Excellent work!")
	case best >= 0.6:
		fmt.Println("👍 Good job!")
	default:
		fmt.Println("📚 Keep studying!")
	}
}

func askMultipleChoice(scanner *bufio.Scanner, record examgen.QuestionRecord, players []*Player) {
	options := record.Answer.Options
	if len(options) > len(optionLetters) {
		options = options[:len(optionLetters)]
	}
	letters := optionLetters[:len(options)]

	correct := -1
	for i, option := range options {
		fmt.Printf("%c) %s\n", letters[i], option.Text)
		if option.Correct {
			correct = i
		}
	}
	fmt.Println()

	for _, player := range players {
		var choice int
		for {
			fmt.Printf("%s's answer (%s): ", player.Name, strings.Join(strings.Split(letters, ""), "/"))
			scanner.Scan()
			input := strings.ToUpper(strings.TrimSpace(scanner.Text()))
			choice = strings.Index(letters, input)
			if len(input) == 1 && choice >= 0 {
				break
			}
			fmt.Printf("Please enter one of %s\n", letters)
		}

		if choice == correct {
			fmt.Printf("✅ %s: Correct!\n", player.Name)
			player.Score++
		} else if correct >= 0 {
			fmt.Printf("❌ %s: Incorrect. The correct answer is %c) %s\n", player.Name, letters[correct], options[correct].Text)
		}
	}
}

// askOpen shows the reference answer and lets each player mark themselves
func askOpen(scanner *bufio.Scanner, record examgen.QuestionRecord, players []*Player) {
	for _, player := range players {
		fmt.Printf("%s's answer: ", player.Name)
		scanner.Scan()
	}
	fmt.Printf("\n💡 Reference answer: %s\n\n", record.Answer.Text)

	for _, player := range players {
		for {
			fmt.Printf("Was %s right? (y/n): ", player.Name)
			scanner.Scan()
			reply := strings.ToLower(strings.TrimSpace(scanner.Text()))
			if reply == "y" {
				player.Score++
				break
			}
			if reply == "n" {
				break
			}
		}
	}
}
