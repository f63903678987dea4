// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai implements the ai interfaces against OpenAI-compatible chat
// APIs (Ollama, LocalAI, vLLM, OpenAI itself).
//
// All model calls run in JSON mode at temperature 0 for reproducible output.
// Responses are defensively cleaned before parsing: markdown code fences are
// stripped and common structural defects repaired, with a bounded number of
// re-queries when the response still fails to parse.
package openai
