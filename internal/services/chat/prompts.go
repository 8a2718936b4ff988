package chat

import "fmt"

// workspaceSystemPrompt frames a workspace conversation. The retrieval
// context block is appended below this text each turn.
const workspaceSystemPrompt = `You are a helpful AI assistant answering questions about a user's document workspace.

When answering:
1. Prefer the provided context over general knowledge
2. Cite internal documents by name and page, and web sources by title
3. If the context states that no specific information was found, answer from general knowledge and say that the workspace documents did not cover the question
4. End your answer with a "### Sources" section listing the sources you actually used
5. Format your responses in clear, readable Markdown`

// documentSystemPrompt frames a single-document conversation. The full
// document text is injected; there is no retrieval step in this scope.
func documentSystemPrompt(name, content string) string {
	return fmt.Sprintf(`You are a helpful AI assistant answering questions about the document %q.

Answer only from the document content below. If the document does not cover the question, say so clearly rather than guessing.

### Document Content:
%s`, name, content)
}

// buildWorkspacePrompt appends the retrieved context to the workspace
// system prompt.
func buildWorkspacePrompt(contextText string) string {
	return fmt.Sprintf("%s\n\n%s", workspaceSystemPrompt, contextText)
}
