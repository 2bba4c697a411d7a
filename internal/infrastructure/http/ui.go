package http

import (
	"net/http"

	"github.com/0xcro3dile/adaptiverag/internal/infrastructure/logger"
)

const indexSuggestions = 6

type indexData struct {
	Available   bool
	TotalChunks int
	TotalFiles  int
	FileTypes   []string
	Suggestions []string
}

// handleIndex renders the chat UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var data indexData
	if kb, err := s.Stats.KnowledgeBase(r.Context()); err == nil {
		data.Available = kb.TotalChunks > 0
		data.TotalChunks = kb.TotalChunks
		data.TotalFiles = len(kb.FileSources)
		data.FileTypes = mapKeys(kb.FileTypes)
	}
	if suggestions, err := s.Stats.Suggestions(r.Context()); err == nil {
		data.Suggestions = suggestions[:min(len(suggestions), indexSuggestions)]
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.Execute(w, data); err != nil {
		logger.Errorf("rendering index: %v", err)
	}
}

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Universal RAG System</title>
    <style>
        body { font-family: system-ui, sans-serif; margin: 0; background: #f5f5f7; }
        .container { max-width: 860px; margin: 0 auto; padding: 24px; }
        .subtitle { color: #666; }
        #messages { min-height: 320px; }
        .message { padding: 10px 14px; margin: 8px 0; border-radius: 8px; white-space: pre-wrap; }
        .user { background: #dbeafe; }
        .assistant { background: #fff; }
        .meta { color: #888; font-size: 12px; }
        .error { color: #b91c1c; }
        .suggestion { display: inline-block; margin: 4px; padding: 4px 10px; border: 1px solid #ccc; border-radius: 14px; cursor: pointer; }
        form { display: flex; gap: 8px; }
        input { flex: 1; padding: 10px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Universal RAG System</h1>
            {{if .Available}}
            <p class="subtitle">{{.TotalChunks}} chunks from {{.TotalFiles}} files ({{range $i, $t := .FileTypes}}{{if $i}}, {{end}}{{$t}}{{end}})</p>
            {{else}}
            <p class="subtitle error">The knowledge base is empty. Run <code>adaptiverag ingest</code> first.</p>
            {{end}}
        </header>

        <main>
            <div id="suggestions">
                {{range .Suggestions}}<span class="suggestion" onclick="ask(this.textContent)">{{.}}</span>{{end}}
            </div>
            <div id="messages"></div>
            <form id="query-form" onsubmit="sendQuery(event)">
                <input type="text" id="query-input" placeholder="Ask about your documents..." autocomplete="off" required>
                <button type="submit">Send</button>
            </form>
        </main>
    </div>

    <script>
        function sendQuery(e) {
            e.preventDefault();
            const input = document.getElementById('query-input');
            const query = input.value.trim();
            input.value = '';
            if (query) ask(query);
        }

        function ask(query) {
            const messages = document.getElementById('messages');
            const user = document.createElement('div');
            user.className = 'message user';
            user.textContent = query;
            messages.appendChild(user);

            const answer = document.createElement('div');
            answer.className = 'message assistant';
            messages.appendChild(answer);
            const meta = document.createElement('div');
            meta.className = 'meta';
            messages.appendChild(meta);

            const source = new EventSource('/api/query/stream?q=' + encodeURIComponent(query));
            let text = '';
            source.onmessage = function(event) {
                const data = JSON.parse(event.data);
                if (data.complexity) {
                    meta.textContent = data.complexity + ' query, ' + data.chunks_found + ' chunks from ' + (data.retrieved_sources || []).join(', ');
                    return;
                }
                if (data.error) {
                    answer.classList.add('error');
                    answer.textContent = data.error;
                    source.close();
                    return;
                }
                text += data.content || '';
                answer.textContent = text;
                if (data.done) source.close();
            };
            source.onerror = function() {
                source.close();
                if (!text) {
                    answer.classList.add('error');
                    answer.textContent = 'Connection error';
                }
            };
        }
    </script>
</body>
</html>`
