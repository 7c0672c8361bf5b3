package mcpserver

// MemoTypeContract describes the memo types a catalog stores and how
// LLM consumers should pick between them when creating memos.
const MemoTypeContract = `# Procyon Memo Types

Every memo in a Procyon catalog has exactly one type, fixed at creation.
The type cannot be changed by an update.

## Types

| Key          | Meaning                                                      |
|--------------|--------------------------------------------------------------|
| plain_text   | Plain text. No markup is interpreted. Default for new memos. |
| wiki_text    | Lightweight wiki markup (headings, emphasis, links).         |
| rich_text    | Stored rich text; treat the body as opaque.                  |

## Rules

1. When creating a memo, pass one of the keys above in the "type"
   argument. An unknown or empty key falls back to plain_text.
2. The first line of the body is conventionally the memo title repeated;
   the catalog derives the sidebar excerpt from the first non-title line.
3. Memos live inside folders. Pass the folder id as "parent_id", or 0
   for the catalog root.
`
