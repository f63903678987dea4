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

// Package agents contains the format-specialized extraction agents and the
// registry that routes classified documents to them.
//
// Each agent turns one document format into a normalized record: the email
// agent builds CRM-style contact records with urgency and conversation
// threading, the JSON agent validates and reshapes structured payloads, the
// PDF agent reads document metadata and a text preview, and the text agent
// is the fallback that keeps a preview of anything else.
package agents
