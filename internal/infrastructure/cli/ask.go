package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0xcro3dile/adaptiverag/internal/app"
	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/entities"
	"github.com/0xcro3dile/adaptiverag/internal/domain/prompts"
)

const (
	goodbye        = "Thanks for using the Universal RAG System! Goodbye!"
	historyPreview = 100
	separatorWidth = 80
	codePreview    = 300
	dataPreview    = 250
	defaultPreview = 400
)

var askDebug bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask questions about the ingested documents",
	Long: `Answers a single question when one is given. Without a question it starts
a conversation: follow-up questions see the previous exchanges, and 'help'
lists the commands available at the prompt.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askDebug, "debug", false, "show the retrieved chunks with each answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	s := &session{app: a, cmd: cmd, out: cmd.OutOrStdout(), debug: askDebug}
	if len(args) > 0 {
		return s.ask(cmd.Context(), strings.Join(args, " "))
	}
	return s.loop(cmd.Context(), cmd.InOrStdin())
}

// session is one conversation at the terminal.
type session struct {
	app     *app.App
	cmd     *cobra.Command
	out     io.Writer
	debug   bool
	history []entities.Exchange
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) loop(ctx context.Context, in io.Reader) error {
	kb, err := s.app.Stats.KnowledgeBase(ctx)
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}
	if kb.TotalChunks == 0 {
		s.printf("%s\n", domain.MsgEmptyKnowledge)
		return nil
	}
	s.printf("Connected to the knowledge base: %d chunks from %d files\n", kb.TotalChunks, len(kb.FileSources))
	s.printf("Type 'help' for commands, 'debug on/off' to toggle details, or 'exit' to quit\n")

	scanner := bufio.NewScanner(in)
	for {
		s.printf("\nYou [%d]: ", len(s.history)+1)
		if !scanner.Scan() {
			s.printf("\n\n%s\n", goodbye)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "exit", "quit", "bye":
			s.printf("\n%s\n", goodbye)
			return nil
		case "help":
			s.help()
		case "history":
			s.showHistory()
		case "clear":
			s.history = nil
			s.printf("Conversation history cleared!\n")
		case "suggestions":
			if err := s.suggestions(ctx); err != nil {
				return err
			}
		case "stats":
			if err := s.stats(ctx); err != nil {
				return err
			}
		case "debug", "debug on":
			s.debug = true
			s.printf("Debug mode enabled - showing detailed processing information\n")
		case "debug off":
			s.debug = false
			s.printf("Debug mode disabled - showing only essential information\n")
		default:
			if err := s.ask(ctx, line); err != nil {
				return err
			}
		}
	}
}

func (s *session) help() {
	s.printf("\nChat commands:\n")
	s.printf("  Type your question normally\n")
	s.printf("  help         show this help\n")
	s.printf("  history      show conversation history\n")
	s.printf("  clear        clear conversation history\n")
	s.printf("  suggestions  show query suggestions\n")
	s.printf("  stats        show knowledge base statistics\n")
	s.printf("  debug on|off toggle detailed processing information\n")
	s.printf("  exit, quit   end the conversation\n")
	mode := "OFF"
	if s.debug {
		mode = "ON"
	}
	s.printf("\nDebug mode is currently: %s\n", mode)
}

func (s *session) showHistory() {
	if len(s.history) == 0 {
		s.printf("No conversation history yet.\n")
		return
	}
	s.printf("\nConversation history (%d exchanges):\n", len(s.history))
	s.printf("%s\n", strings.Repeat("=", 60))
	for i, ex := range s.history {
		s.printf("\nQ%d: %s\n", i+1, ex.Query)
		s.printf("A%d: %s\n", i+1, prompts.Truncate(ex.Answer, historyPreview))
	}
	s.printf("%s\n", strings.Repeat("=", 60))
}

func (s *session) suggestions(ctx context.Context) error {
	list, err := s.app.Stats.ConversationSuggestions(ctx, s.history)
	if err != nil {
		return fmt.Errorf("building suggestions: %w", err)
	}
	if len(list) == 0 {
		s.printf("\nNo specific suggestions available. Try asking about your content!\n")
		return nil
	}
	s.printf("\nQuery suggestions based on your content:\n")
	for i, q := range list {
		s.printf("  %d. %s\n", i+1, q)
	}
	return nil
}

func (s *session) stats(ctx context.Context) error {
	kb, err := s.app.Stats.KnowledgeBase(ctx)
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}
	printStats(s.cmd, kb)
	return nil
}

// ask answers one question, streaming the model output. Only cancellation
// ends the conversation; other failures are shown and the loop goes on.
func (s *session) ask(ctx context.Context, query string) error {
	resp, tokens, err := s.app.Query.AskStream(ctx, entities.ChatRequest{Query: query, History: s.history})
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, domain.ErrNoResults):
		s.printf("No relevant information found.\n")
		s.printf("Try rephrasing your question or check that your query matches your content.\n")
		return nil
	case err != nil && resp == nil:
		s.printf("%s\n", domain.UserMessage(err))
		return nil
	}

	if s.debug {
		s.printChunks(resp)
	}

	rule := strings.Repeat("=", separatorWidth)
	s.printf("\n%s\nAI [%d]:\n%s\n\n", rule, len(s.history)+1, rule)
	if err != nil {
		s.printf("%s\n", domain.UserMessage(err))
		return nil
	}

	var answer strings.Builder
	for tok := range tokens {
		if tok.Error != nil {
			if errors.Is(tok.Error, context.Canceled) {
				return tok.Error
			}
			s.printf("\n%s\n", domain.UserMessage(tok.Error))
			return nil
		}
		s.printf("%s", tok.Content)
		answer.WriteString(tok.Content)
		if tok.Done {
			break
		}
	}
	s.printf("\n")

	s.history = append(s.history, entities.Exchange{Query: query, Answer: answer.String()})
	if s.debug && len(s.history) > 1 {
		s.printf("\nThis response builds on %d previous exchange(s)\n", len(s.history)-1)
	}
	return nil
}

func (s *session) printChunks(resp *entities.ChatResponse) {
	s.printf("Query complexity: %s\n", resp.Complexity)
	s.printf("\nFound %d relevant chunks:\n%s\n", resp.ChunksFound, strings.Repeat("=", separatorWidth))
	for _, c := range resp.Chunks {
		s.printf("\nChunk %d\n", c.Index)
		s.printf("File: %s\n", c.Source)
		s.printf("Title: %s\n", c.Title)
		s.printf("Type: %s | Format: %s | Strategy: %s | Size: %d chars\n",
			c.ContentType, strings.ToUpper(string(c.FileType)), c.Strategy, c.ChunkSize)
		s.printf("%s\n", strings.Repeat("-", separatorWidth))
		s.printf("%s\n", prompts.Truncate(c.Content, previewLength(c.ContentType)))
	}
}

func previewLength(ct entities.ContentType) int {
	switch ct {
	case entities.ContentCode:
		return codePreview
	case entities.ContentData:
		return dataPreview
	default:
		return defaultPreview
	}
}
