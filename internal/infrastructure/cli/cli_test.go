package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xcro3dile/adaptiverag/internal/adapters/actioncatalog"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/loader"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/splitter"
	"github.com/0xcro3dile/adaptiverag/internal/adapters/vectordb"
	"github.com/0xcro3dile/adaptiverag/internal/app"
	"github.com/0xcro3dile/adaptiverag/internal/domain"
	"github.com/0xcro3dile/adaptiverag/internal/domain/ports"
	"github.com/0xcro3dile/adaptiverag/internal/domain/usecases"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/config"
	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0, 0}, nil
}

func (e fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = e.Embed(ctx, texts[i])
	}
	return out, nil
}

// fakeLLM streams its reply in two tokens, or fails with err.
type fakeLLM struct {
	reply string
	err   error
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, opts ports.GenerateOptions) (string, error) {
	return f.reply, f.err
}

func (f *fakeLLM) GenerateStream(ctx context.Context, prompt string, opts ports.GenerateOptions) (<-chan ports.StreamToken, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan ports.StreamToken, 2)
	half := len(f.reply) / 2
	ch <- ports.StreamToken{Content: f.reply[:half]}
	ch <- ports.StreamToken{Content: f.reply[half:], Done: true}
	close(ch)
	return ch, nil
}

// setupTestApp points buildApp at an in-memory app and resets flags after
// the test.
func setupTestApp(t *testing.T, model *fakeLLM) *app.App {
	t.Helper()
	logger.SetOutput(io.Discard)

	store := vectordb.NewInMemoryStore()
	query := usecases.NewQueryUseCase(fakeEmbedder{}, store, model)
	a := &app.App{
		Config:  config.Default(),
		Ingest:  usecases.NewIngestUseCase(loader.New(nil), splitter.NewRecursive(), fakeEmbedder{}, store, loader.IsSupported),
		Query:   query,
		Chat:    usecases.NewChatUseCase(query, nil),
		Stats:   usecases.NewStatsUseCase(store),
		Actions: usecases.NewActionUseCase(actioncatalog.Default(), nil),
	}

	orig := buildApp
	buildApp = func(ctx context.Context, c *config.Config) (*app.App, error) {
		return a, nil
	}
	t.Cleanup(func() {
		buildApp = orig
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		ingestReplace = false
		analyzeJSON = false
		askDebug = false
		verbose = false
		cfgFile = ""
	})
	return a
}

func execute(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func docsDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"policy.txt": "Refund policy\n\nRefunds are issued within 30 days of purchase.\n\nContact support to start a refund.",
		"prices.csv": "plan,price\nbasic,10\npro,25\n",
		"empty.md":   "   \n",
		"image.png":  "\x89PNG",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRootCmd_PersistentFlags(t *testing.T) {
	cfgFlag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfgFlag)
	assert.Equal(t, "c", cfgFlag.Shorthand)

	verboseFlag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "false", verboseFlag.DefValue)
}

func TestRootCmd_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"ingest", "ask", "serve", "watch", "analyze", "stats", "actions"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_BadConfigFile(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})
	path := filepath.Join(t.TempDir(), "adaptiverag.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ollama]\nbase_url = \"not a url\"\n"), 0o644))

	_, err := execute(t, "", "--config", path, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama.base_url")
}

func TestBuildAppFailure(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})
	buildApp = func(ctx context.Context, c *config.Config) (*app.App, error) {
		return nil, errors.New("store locked")
	}

	_, err := execute(t, "", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store locked")
}

func TestIngestCmd(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})
	dir := docsDir(t)

	out, err := execute(t, "", "ingest", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Processed 2 files (1 skipped)")
	assert.Contains(t, out, "By file type:")
	assert.Contains(t, out, "csv: 1 chunks")
	assert.Contains(t, out, "Skipped:")
	assert.Contains(t, out, "empty.md")
	assert.NotContains(t, out, "image.png")
}

func TestIngestCmd_Replace(t *testing.T) {
	a := setupTestApp(t, &fakeLLM{reply: "ok"})
	dir := docsDir(t)

	_, err := execute(t, "", "ingest", dir)
	require.NoError(t, err)
	first, err := a.Stats.KnowledgeBase(context.Background())
	require.NoError(t, err)

	_, err = execute(t, "", "ingest", "--replace", dir)
	require.NoError(t, err)
	second, err := a.Stats.KnowledgeBase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.TotalChunks, second.TotalChunks)
}

func TestIngestCmd_HasReplaceFlag(t *testing.T) {
	flag := ingestCmd.Flags().Lookup("replace")
	require.NotNil(t, flag)
	assert.Equal(t, "false", flag.DefValue)
}

func TestAnalyzeCmd(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})
	path := filepath.Join(docsDir(t), "policy.txt")

	out, err := execute(t, "", "analyze", path)
	require.NoError(t, err)
	assert.Contains(t, out, "File: policy.txt (text)")
	assert.Contains(t, out, "Content type:")
	assert.Contains(t, out, "Strategy: small_file")
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})
	path := filepath.Join(docsDir(t), "prices.csv")

	out, err := execute(t, "", "analyze", "--json", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"file_type": "csv"`)
	assert.Contains(t, out, `"strategy": "small_file"`)
}

func TestAnalyzeCmd_RequiresExactlyOneArg(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})

	_, err := execute(t, "", "analyze")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestStatsCmd(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})

	out, err := execute(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, domain.MsgEmptyKnowledge)

	_, err = execute(t, "", "ingest", docsDir(t))
	require.NoError(t, err)

	out, err = execute(t, "", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Knowledge base statistics:")
	assert.Contains(t, out, "Files: 2")
	assert.Contains(t, out, "File formats:")
	assert.Contains(t, out, "CSV: 1 chunks")
	assert.Contains(t, out, "File extensions: .csv, .txt")
	assert.Contains(t, out, "1. policy.txt")
	assert.Contains(t, out, "Query suggestions based on your content:")
}

func TestAskCmd_OneShot(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "Refunds take 30 days."})
	_, err := execute(t, "", "ingest", docsDir(t))
	require.NoError(t, err)

	out, err := execute(t, "", "ask", "What", "is", "the", "refund", "window?")
	require.NoError(t, err)
	assert.Contains(t, out, "AI [1]:")
	assert.Contains(t, out, "Refunds take 30 days.")
	assert.NotContains(t, out, "Chunk 1")
}

func TestAskCmd_EmptyKnowledgeBase(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "unused"})

	out, err := execute(t, "", "ask", "anything")
	require.NoError(t, err)
	assert.Contains(t, out, domain.MsgEmptyKnowledge)

	out, err = execute(t, "exit\n", "ask")
	require.NoError(t, err)
	assert.Contains(t, out, domain.MsgEmptyKnowledge)
	assert.NotContains(t, out, "You [1]")
}

func TestAskCmd_ModelUnavailable(t *testing.T) {
	setupTestApp(t, &fakeLLM{err: domain.ErrLLMUnavailable})
	_, err := execute(t, "", "ingest", docsDir(t))
	require.NoError(t, err)

	out, err := execute(t, "", "ask", "What is the refund window?")
	require.NoError(t, err)
	assert.Contains(t, out, domain.MsgLLMUnavailable)
}

func TestAskCmd_Debug(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "Refunds take 30 days."})
	_, err := execute(t, "", "ingest", docsDir(t))
	require.NoError(t, err)

	out, err := execute(t, "", "ask", "--debug", "What is the refund window?")
	require.NoError(t, err)
	assert.Contains(t, out, "Query complexity: simple")
	assert.Contains(t, out, "Chunk 1")
	assert.Contains(t, out, "Strategy: small_file")
}

func TestAskCmd_Interactive(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "Refunds take 30 days."})
	_, err := execute(t, "", "ingest", docsDir(t))
	require.NoError(t, err)

	input := strings.Join([]string{
		"help",
		"",
		"What is the refund window?",
		"debug on",
		"And for the pro plan?",
		"history",
		"suggestions",
		"stats",
		"debug off",
		"clear",
		"history",
		"quit",
	}, "\n") + "\n"

	out, err := execute(t, input, "ask")
	require.NoError(t, err)

	assert.Contains(t, out, "Connected to the knowledge base")
	assert.Contains(t, out, "Chat commands:")
	assert.Contains(t, out, "Debug mode is currently: OFF")
	assert.Contains(t, out, "AI [1]:")
	assert.Contains(t, out, "Debug mode enabled")
	assert.Contains(t, out, "AI [2]:")
	assert.Contains(t, out, "This response builds on 1 previous exchange(s)")
	assert.Contains(t, out, "Conversation history (2 exchanges):")
	assert.Contains(t, out, "Q2: And for the pro plan?")
	assert.Contains(t, out, "Query suggestions based on your content:")
	assert.Contains(t, out, "Knowledge base statistics:")
	assert.Contains(t, out, "Debug mode disabled")
	assert.Contains(t, out, "Conversation history cleared!")
	assert.Contains(t, out, "No conversation history yet.")
	assert.Contains(t, out, "You [1]: ")
	assert.True(t, strings.HasSuffix(out, goodbye+"\n"))
}

func TestAskCmd_InteractiveEOF(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})
	_, err := execute(t, "", "ingest", docsDir(t))
	require.NoError(t, err)

	out, err := execute(t, "", "ask")
	require.NoError(t, err)
	assert.Contains(t, out, goodbye)
}

func TestActionsCmd_List(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})

	out, err := execute(t, "", "actions")
	require.NoError(t, err)
	assert.Contains(t, out, "5 actions available:")
	assert.Contains(t, out, "add_user_to_contract_type: Add User to Contract Type")
}

func TestActionsCmd_Detect(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})

	out, err := execute(t, "", "actions", "detect", "how can I add user to contract type")
	require.NoError(t, err)
	assert.Contains(t, out, "Detected: Add User to Contract Type (add_user_to_contract_type)")
	assert.Contains(t, out, "via pattern_match")
	assert.Contains(t, out, "Example queries:")

	out, err = execute(t, "", "actions", "detect", "what is the weather")
	require.NoError(t, err)
	assert.Contains(t, out, "No action detected.")
}

func TestServeCmd_Flags(t *testing.T) {
	assert.NotNil(t, serveCmd.Flags().Lookup("watch"))
	assert.NotNil(t, serveCmd.Flags().Lookup("addr"))
}

func TestWatchCmd_RequiresDir(t *testing.T) {
	setupTestApp(t, &fakeLLM{reply: "ok"})

	_, err := execute(t, "", "watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestPrintBreakdown_OrdersByCount(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	defer rootCmd.SetOut(nil)

	printBreakdown(rootCmd, "Types", map[string]int{"b": 1, "a": 1, "c": 2}, 4)
	out := buf.String()
	assert.Less(t, strings.Index(out, "c: 2 chunks (50.0%)"), strings.Index(out, "a: 1 chunks (25.0%)"))
	assert.Less(t, strings.Index(out, "a: 1"), strings.Index(out, "b: 1"))
}
