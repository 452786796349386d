// cmd/ratingdemo/main.go
// ratingdemo loads a toy fixture and prints the posterior ratings every
// algorithm in the library produces for it. It is the minimal example
// CLI spec.md §1 scopes out of the core proper; it exists only to give
// internal/fixture.Population a caller.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ratingkit/poprank/bayeselo"
	"github.com/ratingkit/poprank/elo"
	"github.com/ratingkit/poprank/glicko"
	"github.com/ratingkit/poprank/interaction"
	"github.com/ratingkit/poprank/internal/fixture"
	"github.com/ratingkit/poprank/laplacian"
	"github.com/ratingkit/poprank/melo"
	"github.com/ratingkit/poprank/nash"
	"github.com/ratingkit/poprank/rate"
	"github.com/ratingkit/poprank/trueskill"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	ctx := context.Background()

	pop, err := fixture.NewPopulation("a", "b", "c", "d")
	if err != nil {
		log.WithError(err).Fatal("build fixture population")
	}
	players := pop.Names()

	games := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, 0}),
		interaction.New([]string{"a", "c"}, []float64{0.5, 0.5}),
		interaction.New([]string{"b", "d"}, []float64{1, 0}),
		interaction.New([]string{"c", "d"}, []float64{1, 0}),
		interaction.New([]string{"b", "c"}, []float64{0, 1}),
	}

	fmt.Println("== Elo (aggregate) ==")
	eloPriors := make([]rate.EloRate, len(players))
	for i := range eloPriors {
		eloPriors[i] = rate.NewElo(1500, 0)
	}
	eloOut, err := elo.Aggregate(players, games, eloPriors, elo.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("elo aggregate")
	}
	printRates(players, eloOut)

	fmt.Println("== BayesElo ==")
	beOut, err := bayeselo.BayesElo(ctx, players, games, eloPriors, bayeselo.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("bayeselo")
	}
	printRates(players, beOut)

	fmt.Println("== Glicko ==")
	glickoPriors := make([]rate.GlickoRate, len(players))
	for i := range glickoPriors {
		glickoPriors[i] = rate.NewGlicko(1500, 200)
	}
	glOut, err := glicko.Rate(players, games, glickoPriors, glicko.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("glicko")
	}
	printRates(players, glOut)

	fmt.Println("== TrueSkill ==")
	tsPriors := make([]rate.Rate, len(players))
	for i := range tsPriors {
		tsPriors[i] = rate.NewTrueSkill()
	}
	matches := []trueskill.Match{
		{Teams: [][]string{{"a"}, {"b"}}, Ranks: []int{1, 2}},
		{Teams: [][]string{{"c"}, {"d"}}, Ranks: []int{1, 2}},
	}
	tsOut, err := trueskill.Rate(ctx, players, matches, tsPriors, trueskill.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("trueskill")
	}
	printRates(players, tsOut)

	fmt.Println("== mElo ==")
	meloPriors := make([]rate.MultidimEloRate, len(players))
	for i := range meloPriors {
		meloPriors[i] = rate.NewMultidimElo(0, 1)
	}
	meloOut, err := melo.Rate(ctx, players, games, meloPriors, melo.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("melo")
	}
	printRates(players, meloOut)

	fmt.Println("== Nash average ==")
	zeroSum := []interaction.Interaction{
		interaction.New([]string{"a", "b"}, []float64{1, -1}),
		interaction.New([]string{"b", "c"}, []float64{1, -1}),
		interaction.New([]string{"c", "d"}, []float64{1, -1}),
		interaction.New([]string{"d", "a"}, []float64{1, -1}),
	}
	nashOut, err := nash.Average(players, zeroSum, nash.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("nash average")
	}
	printRates(players, nashOut)

	fmt.Println("== Laplacian ==")
	lapPriors := make([]rate.Rate, len(players))
	lapOut, err := laplacian.Rate(players, games, lapPriors, laplacian.DefaultOptions())
	if err != nil {
		log.WithError(err).Fatal("laplacian")
	}
	printRates(players, lapOut)

	os.Exit(0)
}

type anyRate interface {
	rate.Rate | rate.EloRate | rate.GlickoRate | rate.MultidimEloRate
}

func printRates[R anyRate](players []string, ratings []R) {
	for i, p := range players {
		fmt.Printf("  %-4s %+v\n", p, ratings[i])
	}
}
