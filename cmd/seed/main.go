// Command seed stores a quiz so a room can be created right away. Without
// --file it stores a small two-board demo quiz.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"quizboard/internal/config"
	"quizboard/internal/logger"
	"quizboard/internal/model"
	"quizboard/internal/repository"
	"quizboard/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := config.NewViper()
	var file string

	cmd := &cobra.Command{
		Use:           "seed",
		Short:         "Store a quiz in the quizboard database.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Setup(v.GetString("log-level"))

			quiz := demoQuiz()
			if file != "" {
				var err error
				if quiz, err = readQuiz(file); err != nil {
					return err
				}
			}
			return seed(cmd.Context(), v.GetString("mongo-uri"), v.GetString("mongo-db"), quiz)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&file, "file", "f", "", "JSON quiz to store instead of the demo quiz")
	fs.String("mongo-uri", v.GetString("mongo-uri"), "MongoDB connection string (env: QUIZBOARD_MONGO_URI)")
	fs.String("mongo-db", v.GetString("mongo-db"), "MongoDB database name (env: QUIZBOARD_MONGO_DB)")
	fs.String("log-level", v.GetString("log-level"), "debug, info, warn or error (env: QUIZBOARD_LOG_LEVEL)")
	for _, name := range []string{"mongo-uri", "mongo-db", "log-level"} {
		_ = v.BindPFlag(name, fs.Lookup(name))
	}

	return cmd
}

func readQuiz(path string) (*model.Quiz, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var quiz model.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &quiz, nil
}

func seed(ctx context.Context, uri, dbName string, quiz *model.Quiz) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer client.Disconnect(context.Background())

	if err := service.ValidateQuiz(quiz); err != nil {
		return err
	}
	if _, err := repository.NewQuizRepo(client.Database(dbName)).Create(ctx, quiz); err != nil {
		return fmt.Errorf("store quiz: %w", err)
	}

	log.Info().Str("id", quiz.ID).Str("title", quiz.Title).Int("boards", len(quiz.Boards)).Msg("quiz stored")
	fmt.Println(quiz.ID)
	return nil
}

func category(name string, qa ...[2]string) model.Category {
	c := model.Category{Name: name}
	for i, pair := range qa {
		c.Questions = append(c.Questions, model.Question{Index: i + 1, Text: pair[0], Answer: pair[1]})
	}
	return c
}

func demoQuiz() *model.Quiz {
	return &model.Quiz{
		Title:  "Demo Night",
		Author: "quizboard",
		Boards: []model.Board{
			{Categories: []model.Category{
				category("Geography",
					[2]string{"The capital of Australia.", "Canberra"},
					[2]string{"The longest river in Africa.", "Nile"},
					[2]string{"The country with the most time zones.", "France"},
					[2]string{"The smallest country by area.", "Vatican City"},
				),
				category("Science",
					[2]string{"H2O is better known as this.", "Water"},
					[2]string{"The planet closest to the sun.", "Mercury"},
					[2]string{"The hardest natural substance.", "Diamond"},
					[2]string{"The number of bones in an adult human.", "206"},
				),
				category("Music",
					[2]string{"The number of strings on a standard guitar.", "Six"},
					[2]string{"The composer of the Moonlight Sonata.", "Beethoven"},
					[2]string{"The instrument with 88 keys.", "Piano"},
					[2]string{"The band behind Abbey Road.", "The Beatles"},
				),
			}},
			{Categories: []model.Category{
				category("Final Round",
					[2]string{"The year the first person walked on the moon.", "1969"},
					[2]string{"The element with symbol Au.", "Gold"},
				),
				category("Words",
					[2]string{"A word that reads the same backwards.", "Palindrome"},
					[2]string{"The longest English word without a vowel letter.", "Rhythms"},
				),
			}},
		},
	}
}
