package session

// stealthScript runs in every page before any site script, hiding the
// markers the target's anti-automation checks probe for.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });

const originalQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) => (
	parameters.name === 'notifications'
		? Promise.resolve({ state: Notification.permission })
		: originalQuery(parameters)
);

window.chrome = window.chrome || {};
window.chrome.runtime = window.chrome.runtime || {};
`

// stateProbeScript reads the client-side state objects the target exposes.
// Returns an array of whatever globals were populated; empty when none.
const stateProbeScript = `
() => {
	const found = [];
	try {
		if (window.__INITIAL_STATE__) found.push(window.__INITIAL_STATE__);
	} catch (e) {}
	try {
		for (const el of document.querySelectorAll('code')) {
			const text = el.textContent || '';
			if (text.length > 2 && text.trim().startsWith('{')) {
				try { found.push(JSON.parse(text)); } catch (e) {}
			}
		}
	} catch (e) {}
	return found.slice(0, 25);
}
`
